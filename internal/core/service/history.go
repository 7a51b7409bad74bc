package service

import (
	"context"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/metric"
)

// HistoryConfig paces history reads to stay under the remote flood limits.
type HistoryConfig struct {
	// PrefetchDelay is slept before each fetch.
	PrefetchDelay time.Duration
	// BatchDelay is slept after every BatchSize mapped messages.
	BatchDelay time.Duration
	BatchSize  int
}

// DefaultHistoryConfig returns the pacing used by the public gateway.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		PrefetchDelay: 2 * time.Second,
		BatchDelay:    time.Second,
		BatchSize:     20,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DialogLister is the part of a client ListChats needs.
type DialogLister interface {
	Dialogs(ctx context.Context, limit int) ([]domain.Dialog, error)
}

// HistoryReader is the part of a client ListMessages needs.
type HistoryReader interface {
	History(ctx context.Context, peer domain.PeerRef, q domain.HistoryQuery) ([]domain.Message, error)
}

// HistoryFetcher reads dialogs and message pages with pacing.
type HistoryFetcher struct {
	cfg     HistoryConfig
	sleep   Sleeper
	metrics *metric.Registry
}

// HistoryOption configures a HistoryFetcher.
type HistoryOption func(*HistoryFetcher)

// WithSleeper replaces the pacing sleep. Tests use it to run without delay.
func WithSleeper(s Sleeper) HistoryOption {
	return func(h *HistoryFetcher) {
		if s != nil {
			h.sleep = s
		}
	}
}

// WithHistoryMetrics records flood waits on m.
func WithHistoryMetrics(m *metric.Registry) HistoryOption {
	return func(h *HistoryFetcher) {
		h.metrics = m
	}
}

// NewHistoryFetcher creates a fetcher. A non-positive BatchSize disables
// batch pauses.
func NewHistoryFetcher(cfg HistoryConfig, opts ...HistoryOption) *HistoryFetcher {
	h := &HistoryFetcher{cfg: cfg, sleep: SleepContext}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListChats lists up to limit dialogs as chat summaries. Dialogs of unknown
// kinds are skipped.
func (h *HistoryFetcher) ListChats(ctx context.Context, client DialogLister, limit int) ([]domain.ChatSummary, error) {
	if err := domain.CheckLimit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = domain.DefaultHistoryLimit
	}
	dialogs, err := client.Dialogs(ctx, limit)
	if err != nil {
		return nil, remoteError(ctx, h.metrics, err)
	}

	chats := make([]domain.ChatSummary, 0, len(dialogs))
	for _, d := range dialogs {
		if s, ok := domain.Summarize(d.Entity); ok {
			chats = append(chats, s)
		}
	}
	return chats, nil
}

// ListMessages fetches one page of history for peer. It sleeps PrefetchDelay
// before the fetch and BatchDelay after every BatchSize messages. A flood
// wait is returned as domain.ErrRateLimited and never retried.
func (h *HistoryFetcher) ListMessages(ctx context.Context, client HistoryReader, peer domain.PeerRef, q domain.HistoryQuery) (domain.MessagePage, error) {
	if err := domain.CheckLimit(q.Limit); err != nil {
		return domain.MessagePage{}, err
	}
	if q.Limit == 0 {
		q.Limit = domain.DefaultHistoryLimit
	}

	if err := h.sleep(ctx, h.cfg.PrefetchDelay); err != nil {
		return domain.MessagePage{}, asDomainError(err, domain.ErrTimeout)
	}

	raw, err := client.History(ctx, peer, q)
	if err != nil {
		return domain.MessagePage{}, remoteError(ctx, h.metrics, err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, normalizeMessage(m))
		if h.cfg.BatchSize > 0 && len(msgs)%h.cfg.BatchSize == 0 {
			if err := h.sleep(ctx, h.cfg.BatchDelay); err != nil {
				return domain.MessagePage{}, asDomainError(err, domain.ErrTimeout)
			}
		}
	}

	return domain.NewMessagePage(msgs, q.Limit), nil
}

// normalizeMessage drops empty optional fields so they serialize as null.
func normalizeMessage(m domain.Message) domain.Message {
	if m.Text != nil && *m.Text == "" {
		m.Text = nil
	}
	if m.SenderUsername != nil && *m.SenderUsername == "" {
		m.SenderUsername = nil
	}
	if m.ForwardFrom != nil && *m.ForwardFrom == "" {
		m.ForwardFrom = nil
	}
	if m.ReplyToMsgID != nil && *m.ReplyToMsgID == 0 {
		m.ReplyToMsgID = nil
	}
	return m
}
