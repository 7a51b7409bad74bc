package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

func TestRegistry_GetOrCreate_SingleFlight(t *testing.T) {
	factory := newFakeFactory(func(string) *fakeClient {
		return &fakeClient{authorized: true, connectDelay: 50 * time.Millisecond}
	})
	r := newTestRegistry(t, factory)
	tok := mustToken(t, r.Codec(), "sessionA")

	const callers = 32
	var wg sync.WaitGroup
	results := make([]ProtocolClient, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.GetOrCreate(context.Background(), tok)
		}(i)
	}
	wg.Wait()

	if got := factory.calls.Load(); got != 1 {
		t.Fatalf("factory calls = %d, want 1", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d got a different client", i)
		}
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_GetOrCreate_Hit(t *testing.T) {
	factory := newFakeFactory(authorizedClient)
	r := newTestRegistry(t, factory)
	tok := mustToken(t, r.Codec(), "sessionA")

	first, err := r.GetOrCreate(context.Background(), tok)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := r.GetOrCreate(context.Background(), tok)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first != second {
		t.Error("second GetOrCreate returned a different client")
	}
	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
}

func TestRegistry_GetOrCreate_InvalidToken(t *testing.T) {
	factory := newFakeFactory(authorizedClient)
	r := newTestRegistry(t, factory)

	tests := []struct {
		name     string
		tok      string
		decoding bool
	}{
		{"empty", "", false},
		{"no separator", "sessionwithoutcolon", false},
		{"bad base64", "session:!!!notbase64", true},
		{"truncated", "session:v1Kv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.GetOrCreate(context.Background(), tt.tok)
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("GetOrCreate() error = %v, want ErrInvalidToken", err)
			}
			if tt.decoding && !errors.Is(err, domain.ErrDecoding) {
				t.Errorf("GetOrCreate() error = %v, want ErrDecoding in chain", err)
			}
		})
	}
	if got := factory.calls.Load(); got != 0 {
		t.Errorf("factory calls = %d, want 0", got)
	}
}

func TestRegistry_GetOrCreate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		want   *domain.DomainError
	}{
		{"unauthorized", &fakeClient{}, domain.ErrUnauthorized},
		{"connect error", &fakeClient{authorized: true, connectErr: errors.New("dial tcp: refused")}, domain.ErrProtocol},
		{"connect closed", &fakeClient{connectErr: domain.ErrClientClosed}, domain.ErrClientClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newFakeFactory(func(string) *fakeClient { return tt.client })
			r := newTestRegistry(t, factory)
			tok := mustToken(t, r.Codec(), "sessionA")

			_, err := r.GetOrCreate(context.Background(), tok)
			if !errors.Is(err, tt.want) {
				t.Fatalf("GetOrCreate() error = %v, want %v", err, tt.want)
			}
			if r.Count() != 0 {
				t.Errorf("Count() = %d, want 0 after failed creation", r.Count())
			}
			if got := tt.client.disconnects.Load(); got != 1 {
				t.Errorf("half-built client disconnects = %d, want 1", got)
			}
		})
	}
}

func TestRegistry_GetOrCreate_CallerCancelDoesNotAbortCreation(t *testing.T) {
	factory := newFakeFactory(func(string) *fakeClient {
		return &fakeClient{authorized: true, connectDelay: 100 * time.Millisecond}
	})
	r := newTestRegistry(t, factory)
	tok := mustToken(t, r.Codec(), "sessionA")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.GetOrCreate(ctx, tok)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("GetOrCreate() error = %v, want ErrTimeout", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Count() != 1 {
		t.Fatal("detached creation did not register the client")
	}
	if _, err := r.GetOrCreate(context.Background(), tok); err != nil {
		t.Errorf("GetOrCreate() after detached creation error = %v", err)
	}
	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
}

func TestRegistry_ConnectTimeout(t *testing.T) {
	factory := newFakeFactory(func(string) *fakeClient {
		return &fakeClient{authorized: true, connectDelay: time.Second}
	})
	r := newTestRegistry(t, factory, WithConnectTimeout(20*time.Millisecond))
	tok := mustToken(t, r.Codec(), "sessionA")

	_, err := r.GetOrCreate(context.Background(), tok)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("GetOrCreate() error = %v, want ErrTimeout", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	oldTok := mustToken(t, r.Codec(), "pre")
	newTok := mustToken(t, r.Codec(), "post")
	c := &fakeClient{}

	r.Replace("", oldTok, c)
	if got, ok := r.Lookup(oldTok); !ok || got != c {
		t.Fatal("Lookup(old) after insert failed")
	}

	r.Replace(oldTok, newTok, c)
	if _, ok := r.Lookup(oldTok); ok {
		t.Error("Lookup(old) after Replace found a client")
	}
	if got, ok := r.Lookup(newTok); !ok || got != c {
		t.Error("Lookup(new) after Replace did not return the client")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_RemoveAndDisconnect(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	tok := mustToken(t, r.Codec(), "sessionA")
	c := &fakeClient{}
	r.Replace("", tok, c)

	ctx := context.Background()
	if err := r.RemoveAndDisconnect(ctx, tok); err != nil {
		t.Fatalf("RemoveAndDisconnect() error = %v", err)
	}
	if err := r.RemoveAndDisconnect(ctx, tok); err != nil {
		t.Fatalf("second RemoveAndDisconnect() error = %v", err)
	}
	if got := c.disconnects.Load(); got != 1 {
		t.Errorf("disconnects = %d, want 1", got)
	}
	if _, ok := r.Lookup(tok); ok {
		t.Error("token still registered")
	}
}

func TestRegistry_Drain(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	clients := []*fakeClient{
		{},
		{disconnErr: errors.New("broken pipe")},
		{},
	}
	for i, c := range clients {
		r.Replace("", mustToken(t, r.Codec(), string(rune('a'+i))+"session"), c)
	}

	res := r.Drain(context.Background())

	if res.Disconnected != 2 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("Drain() = %+v, want 2 disconnected, 1 failed", res)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d after Drain, want 0", r.Count())
	}
	for i, c := range clients {
		if got := c.disconnects.Load(); got != 1 {
			t.Errorf("client %d disconnects = %d, want 1", i, got)
		}
	}

	if res := r.Drain(context.Background()); res.Disconnected != 0 || res.Failed != 0 {
		t.Errorf("second Drain() = %+v, want empty", res)
	}
}

type panickingClient struct{ fakeClient }

func (p *panickingClient) Disconnect(context.Context) error { panic("boom") }

func TestRegistry_DrainSurvivesPanic(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	r.Replace("", mustToken(t, r.Codec(), "one"), &panickingClient{})
	r.Replace("", mustToken(t, r.Codec(), "two"), &fakeClient{})

	res := r.Drain(context.Background())
	if res.Disconnected != 1 || res.Failed != 1 {
		t.Errorf("Drain() = %+v, want 1 disconnected, 1 failed", res)
	}
}

func TestRegistry_GetOrCreate_EvictsClosedClient(t *testing.T) {
	factory := newFakeFactory(authorizedClient)
	r := newTestRegistry(t, factory)
	tok := mustToken(t, r.Codec(), "sessionA")
	ctx := context.Background()

	first, err := r.GetOrCreate(ctx, tok)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	// The transport ends on its own; the entry is still cached.
	first.(*fakeClient).closed.Store(true)

	second, err := r.GetOrCreate(ctx, tok)
	if err != nil {
		t.Fatalf("GetOrCreate() after close error = %v", err)
	}
	if second == first {
		t.Error("GetOrCreate() returned the closed client")
	}
	if got := factory.calls.Load(); got != 2 {
		t.Errorf("factory calls = %d, want 2", got)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if got, ok := r.Lookup(tok); !ok || got != second {
		t.Error("Lookup() does not return the rebuilt client")
	}
}

func TestRegistry_EvictKeepsConcurrentReplacement(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	tok := mustToken(t, r.Codec(), "sessionA")
	dead := &fakeClient{}
	dead.closed.Store(true)
	fresh := &fakeClient{}
	r.Replace("", tok, fresh)

	// An eviction decided against a stale value must not remove fresh.
	if r.conns.DeleteIf(tok, func(v ProtocolClient) bool { return v == ProtocolClient(dead) }) {
		t.Fatal("DeleteIf() removed a client it did not match")
	}
	if got, ok := r.Lookup(tok); !ok || got != fresh {
		t.Error("replacement client lost")
	}
}

func TestRegistry_ReplaceRetiresOldToken(t *testing.T) {
	factory := newFakeFactory(authorizedClient)
	r := newTestRegistry(t, factory, WithRetiredTTL(time.Hour))
	preTok := mustToken(t, r.Codec(), "pre")
	postTok := mustToken(t, r.Codec(), "post")
	c := &fakeClient{authorized: true}

	r.Replace("", preTok, c)
	r.Replace(preTok, postTok, c)

	_, err := r.GetOrCreate(context.Background(), preTok)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("GetOrCreate(old) error = %v, want ErrUnauthorized", err)
	}
	if got := factory.calls.Load(); got != 0 {
		t.Errorf("factory calls = %d, want 0", got)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if got, err := r.GetOrCreate(context.Background(), postTok); err != nil || got != c {
		t.Errorf("GetOrCreate(new) = %v, %v, want the rekeyed client", got, err)
	}
}

func TestRegistry_RetiredTokenExpires(t *testing.T) {
	factory := newFakeFactory(authorizedClient)
	r := newTestRegistry(t, factory, WithRetiredTTL(time.Hour))
	now := time.Unix(1700000000, 0)
	r.now = func() time.Time { return now }
	preTok := mustToken(t, r.Codec(), "pre")
	postTok := mustToken(t, r.Codec(), "post")

	r.Replace(preTok, postTok, &fakeClient{authorized: true})
	now = now.Add(2 * time.Hour)

	if _, err := r.GetOrCreate(context.Background(), preTok); err != nil {
		t.Fatalf("GetOrCreate(old) after TTL error = %v", err)
	}
	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
}

func TestRegistry_SweepRetired(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient), WithRetiredTTL(time.Hour))
	now := time.Unix(1700000000, 0)
	r.now = func() time.Time { return now }

	r.Replace("a", "b", &fakeClient{})
	now = now.Add(2 * time.Hour)
	r.Replace("c", "d", &fakeClient{})

	if _, ok := r.retired.Get("a"); ok {
		t.Error("expired retired token a not swept")
	}
	if _, ok := r.retired.Get("c"); !ok {
		t.Error("fresh retired token c missing")
	}
}

func TestRegistry_ReplaceDisconnectsDisplaced(t *testing.T) {
	r := newTestRegistry(t, newFakeFactory(authorizedClient))
	aTok := mustToken(t, r.Codec(), "a")
	bTok := mustToken(t, r.Codec(), "b")
	ca, cb := &fakeClient{}, &fakeClient{}

	r.Replace("", aTok, ca)
	r.Replace("", bTok, cb)
	r.Replace(aTok, bTok, ca)

	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if got := cb.disconnects.Load(); got != 1 {
		t.Errorf("displaced client disconnects = %d, want 1", got)
	}
	if got := ca.disconnects.Load(); got != 0 {
		t.Errorf("moved client disconnects = %d, want 0", got)
	}

	// Re-registering the same client under its own token is not a displacement.
	r.Replace(bTok, bTok, ca)
	if got := ca.disconnects.Load(); got != 0 {
		t.Errorf("self-replace disconnects = %d, want 0", got)
	}
}

func TestRegistry_DrainDuringCreation(t *testing.T) {
	gate := make(chan struct{})
	factory := newFakeFactory(func(string) *fakeClient {
		return &fakeClient{authorized: true, connectGate: gate}
	})
	r := newTestRegistry(t, factory)
	tok := mustToken(t, r.Codec(), "sessionA")

	errc := make(chan error, 1)
	go func() {
		_, err := r.GetOrCreate(context.Background(), tok)
		errc <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for factory.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if factory.calls.Load() == 0 {
		t.Fatal("creation never started")
	}

	r.Drain(context.Background())
	close(gate)

	if err := <-errc; !errors.Is(err, domain.ErrClientClosed) {
		t.Fatalf("GetOrCreate() error = %v, want ErrClientClosed", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d after drain, want 0", r.Count())
	}
	if got := factory.last().disconnects.Load(); got != 1 {
		t.Errorf("late client disconnects = %d, want 1", got)
	}

	// Creations after the drain register normally.
	if _, err := r.GetOrCreate(context.Background(), tok); err != nil {
		t.Errorf("GetOrCreate() after drain error = %v", err)
	}
}
