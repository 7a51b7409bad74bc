package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
)

func TestNewHandler(t *testing.T) {
	h := NewHandler(5*time.Second, nil)
	if h == nil {
		t.Fatal("NewHandler returned nil")
	}
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.logger == nil {
		t.Error("logger should default")
	}

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func recordHooks(h *Handler, n int) (*[]int, *sync.Mutex) {
	order := make([]int, 0, n)
	var mu sync.Mutex
	for i := 1; i <= n; i++ {
		id := i
		h.OnShutdown("hook", func(context.Context) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		})
	}
	return &order, &mu
}

func waitResult(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
		return nil
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5*time.Second, logger.NewNop())
	order, mu := recordHooks(h, 3)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()

	// Give Wait time to set up signal handler
	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	if err := waitResult(t, errCh); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*order) != 3 || (*order)[0] != 3 || (*order)[1] != 2 || (*order)[2] != 1 {
		t.Errorf("hooks called in order %v, want [3 2 1]", *order)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Trigger(t *testing.T) {
	h := NewHandler(5*time.Second, logger.NewNop())
	order, mu := recordHooks(h, 2)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()

	h.Trigger("admin socket")
	h.Trigger("second call is ignored")

	if err := waitResult(t, errCh); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(*order) != 2 {
		t.Errorf("hooks called = %d, want 2", len(*order))
	}
}

func TestHandler_Trigger_BeforeWait(t *testing.T) {
	h := NewHandler(5*time.Second, logger.NewNop())
	h.Trigger("early")

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	if err := waitResult(t, errCh); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestHandler_Wait_HookErrors(t *testing.T) {
	h := NewHandler(5*time.Second, logger.NewNop())

	errA := errors.New("drain failed")
	errB := errors.New("close failed")
	ran := 0
	h.OnShutdown("a", func(context.Context) error { ran++; return errA })
	h.OnShutdown("ok", func(context.Context) error { ran++; return nil })
	h.OnShutdown("b", func(context.Context) error { ran++; return errB })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	err := waitResult(t, errCh)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() error = %v, want both hook errors", err)
	}
	if ran != 3 {
		t.Errorf("hooks ran = %d, want 3", ran)
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(20*time.Millisecond, logger.NewNop())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger("test")
	err := h.Wait()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5*time.Second, logger.NewNop())

	var wg sync.WaitGroup
	numGoroutines := 10
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("noop", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != numGoroutines {
		t.Errorf("hooks = %d, want %d", len(h.hooks), numGoroutines)
	}
}
