package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/internal/telemetry/metric"
	"github.com/yndnr/tokgate-go/pkg/cmap"
	"github.com/yndnr/tokgate-go/pkg/token"
)

const (
	// DefaultConnectTimeout bounds connect plus the authorization check.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultRetiredTTL is how long a token replaced by a newer one is
	// refused.
	DefaultRetiredTTL = 24 * time.Hour

	// discardTimeout bounds disconnecting a client that failed to register.
	discardTimeout = 5 * time.Second

	// retiredSweepEvery spaces out sweeps of expired retired tokens.
	retiredSweepEvery = time.Minute
)

// DrainResult reports the outcome of Registry.Drain.
type DrainResult struct {
	Disconnected int
	Failed       int
	Errors       []error
}

// Registry holds at most one live protocol connection per token. It is a
// rebuildable cache: every entry can be recreated from its token.
type Registry struct {
	conns   *cmap.Map[ProtocolClient]
	group   singleflight.Group
	codec   *token.Codec
	factory ClientFactory

	// retired maps tokens superseded by Replace to the time they were.
	retired    *cmap.Map[time.Time]
	retiredTTL time.Duration
	lastSweep  atomic.Int64
	now        func() time.Time

	// epoch advances on every Drain. Creations that started in an earlier
	// epoch do not register.
	drainMu sync.RWMutex
	epoch   uint64

	connectTimeout time.Duration
	metrics        *metric.Registry
	log            logger.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConnectTimeout sets the bound for creating a connection.
func WithConnectTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.connectTimeout = d
		}
	}
}

// WithRetiredTTL sets how long replaced tokens are refused.
func WithRetiredTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.retiredTTL = d
		}
	}
}

// WithMetrics records connection metrics on m.
func WithMetrics(m *metric.Registry) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(codec *token.Codec, factory ClientFactory, opts ...RegistryOption) *Registry {
	r := &Registry{
		conns:          cmap.New[ProtocolClient](),
		retired:        cmap.New[time.Time](),
		retiredTTL:     DefaultRetiredTTL,
		now:            time.Now,
		codec:          codec,
		factory:        factory,
		connectTimeout: DefaultConnectTimeout,
		log:            logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "registry")
	return r
}

// Codec returns the token codec the registry decodes with.
func (r *Registry) Codec() *token.Codec {
	return r.codec
}

// Lookup returns the live client for tok without creating one.
func (r *Registry) Lookup(tok string) (ProtocolClient, bool) {
	return r.conns.Get(tok)
}

// GetOrCreate returns the live client for tok, connecting a new one on a miss.
// A cached client whose connection has ended is evicted and rebuilt. Tokens
// superseded by Replace fail with domain.ErrUnauthorized.
//
// Concurrent misses for the same token share one creation. The creation runs
// detached from ctx, bounded by the connect timeout, so one caller giving up
// does not fail the others.
func (r *Registry) GetOrCreate(ctx context.Context, tok string) (ProtocolClient, error) {
	if c, ok := r.live(tok); ok {
		return c, nil
	}
	if r.isRetired(tok) {
		return nil, domain.ErrUnauthorized.WithDetails("session string was superseded")
	}

	session, creds, err := decodeToken(r.codec, tok)
	if err != nil {
		return nil, err
	}

	ch := r.group.DoChan(tok, func() (any, error) {
		// A concurrent creation may have finished between Get and DoChan.
		if c, ok := r.live(tok); ok {
			return c, nil
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.connectTimeout)
		defer cancel()
		return r.create(cctx, tok, session, creds)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ProtocolClient), nil
	case <-ctx.Done():
		return nil, domain.ErrTimeout.WithCause(ctx.Err())
	}
}

// live returns the cached client for tok if it can still serve requests.
// A closed one is removed, unless a concurrent Replace already swapped in
// another client.
func (r *Registry) live(tok string) (ProtocolClient, bool) {
	c, ok := r.conns.Get(tok)
	if !ok {
		return nil, false
	}
	if !c.Closed() {
		return c, true
	}
	if r.conns.DeleteIf(tok, func(v ProtocolClient) bool { return v == c }) {
		r.metrics.ConnectionRemoved(metric.RemovedClosed, 1)
		r.log.Info("evicted closed connection", "token_fp", token.Fingerprint(tok))
		r.discard(c)
	}
	return nil, false
}

func (r *Registry) isRetired(tok string) bool {
	at, ok := r.retired.Get(tok)
	if !ok {
		return false
	}
	if r.now().Sub(at) < r.retiredTTL {
		return true
	}
	r.retired.DeleteIf(tok, func(v time.Time) bool { return v.Equal(at) })
	return false
}

// sweepRetired drops expired retired tokens, at most once per
// retiredSweepEvery.
func (r *Registry) sweepRetired() {
	now := r.now()
	last := r.lastSweep.Load()
	if now.UnixNano()-last < int64(retiredSweepEvery) || !r.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	var expired []string
	r.retired.Range(func(tok string, at time.Time) bool {
		if now.Sub(at) >= r.retiredTTL {
			expired = append(expired, tok)
		}
		return true
	})
	for _, tok := range expired {
		r.retired.DeleteIf(tok, func(at time.Time) bool { return now.Sub(at) >= r.retiredTTL })
	}
}

func (r *Registry) create(ctx context.Context, tok, session string, creds domain.APICredentials) (ProtocolClient, error) {
	start := time.Now()
	log := logger.L(ctx).With("token_fp", token.Fingerprint(tok), "api_id", creds.ID)

	r.drainMu.RLock()
	epoch := r.epoch
	r.drainMu.RUnlock()

	c, err := r.factory.NewClient(session, creds)
	if err != nil {
		return nil, r.failed(log, asDomainError(err, domain.ErrInvalidToken))
	}

	// 1. Connect
	if err := c.Connect(ctx); err != nil {
		r.discard(c)
		return nil, r.failed(log, asDomainError(err, domain.ErrProtocol))
	}

	// 2. Only authorized sessions are cached
	authorized, err := c.IsAuthorized(ctx)
	if err != nil {
		r.discard(c)
		return nil, r.failed(log, asDomainError(err, domain.ErrProtocol))
	}
	if !authorized {
		r.discard(c)
		return nil, r.failed(log, domain.ErrUnauthorized)
	}

	// 3. Register, unless a Drain ran meanwhile. A concurrent Replace may
	// already hold the token.
	r.drainMu.RLock()
	if r.epoch != epoch {
		r.drainMu.RUnlock()
		r.discard(c)
		return nil, r.failed(log, domain.ErrClientClosed.WithDetails("registry drained while connecting"))
	}
	existing, inserted := r.conns.SetIfAbsent(tok, c)
	r.drainMu.RUnlock()
	if !inserted {
		r.discard(c)
		return existing, nil
	}

	r.metrics.ConnectionCreated(time.Since(start))
	log.Debug("connection registered", "duration", time.Since(start))
	return c, nil
}

func (r *Registry) failed(log logger.Logger, err error) error {
	r.metrics.ConnectionFailed(domain.GetErrorCode(err))
	log.Info("connection not registered", "error", err)
	return err
}

// discard disconnects a client that never made it into the map.
func (r *Registry) discard(c ProtocolClient) {
	ctx, cancel := context.WithTimeout(context.Background(), discardTimeout)
	defer cancel()
	_ = c.Disconnect(ctx)
}

// Replace atomically moves c from oldTok to newTok. An empty oldTok only
// inserts. After Replace returns, Lookup(oldTok) finds nothing and
// GetOrCreate(oldTok) fails with domain.ErrUnauthorized until the retired
// TTL passes. A different client previously held by newTok is disconnected.
func (r *Registry) Replace(oldTok, newTok string, c ProtocolClient) {
	if oldTok != "" && oldTok != newTok {
		r.retired.Set(oldTok, r.now())
	}
	r.retired.Delete(newTok)

	if displaced, ok := r.conns.Swap(oldTok, newTok, c); ok && displaced != c {
		r.metrics.ConnectionRemoved(metric.RemovedReplace, 1)
		r.discard(displaced)
	}
	r.log.Debug("connection rekeyed",
		"old_token_fp", token.Fingerprint(oldTok),
		"token_fp", token.Fingerprint(newTok),
	)
	r.sweepRetired()
}

// RemoveAndDisconnect removes tok and disconnects its client. Removing an
// absent token is a no-op.
func (r *Registry) RemoveAndDisconnect(ctx context.Context, tok string) error {
	c, ok := r.conns.Pop(tok)
	if !ok {
		return nil
	}
	r.metrics.ConnectionRemoved(metric.RemovedLogout, 1)
	if err := c.Disconnect(ctx); err != nil {
		return asDomainError(err, domain.ErrProtocol)
	}
	return nil
}

// Drain removes and disconnects every entry. Disconnect errors are collected;
// Drain never stops early. In-flight requests are not awaited and fail with
// domain.ErrClientClosed on their drained client.
func (r *Registry) Drain(ctx context.Context) DrainResult {
	r.drainMu.Lock()
	r.epoch++
	r.drainMu.Unlock()

	var res DrainResult
	for _, tok := range r.conns.Keys() {
		c, ok := r.conns.Pop(tok)
		if !ok {
			continue
		}
		if err := r.disconnect(ctx, c); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err)
			r.log.Warn("disconnect failed during drain", "token_fp", token.Fingerprint(tok), "error", err)
			continue
		}
		res.Disconnected++
	}
	r.metrics.ConnectionRemoved(metric.RemovedDrain, res.Disconnected+res.Failed)
	r.log.Info("registry drained", "disconnected", res.Disconnected, "failed", res.Failed)
	return res
}

// disconnect shields Drain from a panicking client.
func (r *Registry) disconnect(ctx context.Context, c ProtocolClient) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("disconnect panicked")
		}
	}()
	return c.Disconnect(ctx)
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	return r.conns.Count()
}

// ShardStats returns the number of connections per map shard.
func (r *Registry) ShardStats() []int {
	return r.conns.ShardStats()
}
