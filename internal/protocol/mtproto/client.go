package mtproto

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/core/service"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// Device identifies the gateway to the remote service.
type Device struct {
	Model         string
	SystemVersion string
	AppVersion    string
	LangCode      string
}

// Factory builds gotd-backed clients. It implements service.ClientFactory.
type Factory struct {
	device Device
	log    logger.Logger
}

var _ service.ClientFactory = (*Factory)(nil)

// NewFactory creates a Factory. A nil log uses the default logger.
func NewFactory(device Device, log logger.Logger) *Factory {
	if log == nil {
		log = logger.Default()
	}
	return &Factory{device: device, log: log}
}

// NewClient implements service.ClientFactory. The client is not connected.
func (f *Factory) NewClient(sessionString string, creds domain.APICredentials) (service.ProtocolClient, error) {
	st, err := newStorage(context.Background(), sessionString)
	if err != nil {
		return nil, err
	}

	c := &Client{
		storage: st,
		peers:   newPeerCache(),
		log:     f.log.With("api_id", creds.ID),
		done:    make(chan struct{}),
	}
	c.tg = telegram.NewClient(int(creds.ID), creds.Hash, telegram.Options{
		SessionStorage: st,
		NoUpdates:      true,
		Device: telegram.DeviceConfig{
			DeviceModel:    f.device.Model,
			SystemVersion:  f.device.SystemVersion,
			AppVersion:     f.device.AppVersion,
			SystemLangCode: f.device.LangCode,
			LangCode:       f.device.LangCode,
		},
	})
	c.api = c.tg.API()
	return c, nil
}

// Client is one MTProto connection.
type Client struct {
	tg      *telegram.Client
	api     *tg.Client
	storage *memoryStorage
	peers   *peerCache
	log     logger.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
	closed  atomic.Bool

	// Login state between SendCode and SignIn.
	phone    string
	codeHash string
}

var _ service.ProtocolClient = (*Client)(nil)

// Connect starts the run loop and waits until the connection is ready. The
// loop outlives ctx; only Disconnect stops it.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return domain.ErrClientClosed
	}
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		defer close(c.done)
		err := c.tg.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("mtproto run loop stopped", "error", err)
		}
		c.mu.Lock()
		c.runErr = err
		c.mu.Unlock()
	}()

	select {
	case <-ready:
		return nil
	case <-c.done:
		c.mu.Lock()
		err := c.runErr
		c.mu.Unlock()
		if err == nil || errors.Is(err, context.Canceled) {
			return domain.ErrClientClosed
		}
		return mapError(err)
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Disconnect stops the run loop and waits for it to exit or for ctx.
// Calling it more than once is fine.
func (c *Client) Disconnect(ctx context.Context) error {
	c.closed.Store(true)
	c.mu.Lock()
	started, cancel := c.started, c.cancel
	c.mu.Unlock()
	if !started {
		return nil
	}
	cancel()
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsAuthorized reports whether the session is logged in.
func (c *Client) IsAuthorized(ctx context.Context) (ok bool, err error) {
	ctx, span := c.span(ctx, "IsAuthorized")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return false, err
	}
	status, err := c.tg.Auth().Status(ctx)
	if err != nil {
		return false, mapError(err)
	}
	return status.Authorized, nil
}

// SaveSession exports the current session as a session string.
func (c *Client) SaveSession(context.Context) (string, error) {
	data := c.storage.bytes()
	if len(data) == 0 {
		return "", domain.ErrInternal.WithDetails("session not established")
	}
	return encodeSession(data), nil
}

// Closed reports whether Disconnect ran or the run loop exited.
func (c *Client) Closed() bool {
	return c.usable() != nil
}

// usable fails once the client is closed or its run loop has exited.
func (c *Client) usable() error {
	if c.closed.Load() {
		return domain.ErrClientClosed
	}
	select {
	case <-c.done:
		return domain.ErrClientClosed
	default:
		return nil
	}
}

func (c *Client) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.StartSpan(ctx, "mtproto."+op, attrs...)
}

func peerAttr(p domain.PeerRef) attribute.KeyValue {
	return attribute.String("peer.kind", p.Kind.String())
}
