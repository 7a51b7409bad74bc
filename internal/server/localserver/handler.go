package localserver

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/service"
)

// Registry is the part of the connection registry the admin surface uses.
type Registry interface {
	Count() int
	Drain(ctx context.Context) service.DrainResult
}

// Deps wires the handler to the running gateway.
type Deps struct {
	Registry Registry
	// Reload re-reads configuration and returns the applied log level.
	Reload func() (string, error)
	// Shutdown starts graceful termination.
	Shutdown func(reason string)
	// Now is swapped in tests.
	Now func() time.Time
}

// Handler handles local management commands.
type Handler struct {
	deps    Deps
	started time.Time
}

// NewHandler creates a new Handler.
func NewHandler(deps Deps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handler{deps: deps, started: deps.Now()}
}

// Execute executes a local management command.
func (h *Handler) Execute(ctx context.Context, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return h.handleStatus(w)
	case "drain":
		return h.handleDrain(ctx, w)
	case "reload":
		return h.handleReload(w)
	case "shutdown":
		return h.handleShutdown(w, args)
	case "help":
		_, err := io.WriteString(w, "commands: status drain reload shutdown\nok\n")
		return err
	default:
		return writeErr(w, "unknown command: "+cmd)
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	uptime := h.deps.Now().Sub(h.started).Truncate(time.Second)
	count := 0
	if h.deps.Registry != nil {
		count = h.deps.Registry.Count()
	}
	_, err := fmt.Fprintf(w, "connections=%d uptime=%s\nok\n", count, uptime)
	return err
}

func (h *Handler) handleDrain(ctx context.Context, w io.Writer) error {
	if h.deps.Registry == nil {
		return writeErr(w, "drain not available")
	}
	res := h.deps.Registry.Drain(ctx)
	if _, err := fmt.Fprintf(w, "disconnected=%d failed=%d\n", res.Disconnected, res.Failed); err != nil {
		return err
	}
	for _, e := range res.Errors {
		if _, err := fmt.Fprintf(w, "  %v\n", e); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "ok\n")
	return err
}

func (h *Handler) handleReload(w io.Writer) error {
	if h.deps.Reload == nil {
		return writeErr(w, "reload not available")
	}
	level, err := h.deps.Reload()
	if err != nil {
		return writeErr(w, err.Error())
	}
	_, err = fmt.Fprintf(w, "log_level=%s\nok\n", level)
	return err
}

func (h *Handler) handleShutdown(w io.Writer, args []string) error {
	if h.deps.Shutdown == nil {
		return writeErr(w, "shutdown not available")
	}
	reason := "local admin"
	if len(args) > 0 {
		reason = strings.Join(args, " ")
	}
	if _, err := io.WriteString(w, "shutting down\nok\n"); err != nil {
		return err
	}
	h.deps.Shutdown(reason)
	return nil
}

func writeErr(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "error: %s\n", msg)
	return err
}
