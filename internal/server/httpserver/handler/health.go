package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/infra/buildinfo"
)

// HealthStatus is the body of /health and /ready.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func healthStatus(status string) HealthStatus {
	return HealthStatus{
		Status:  status,
		Version: buildinfo.Get().Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
}

// handleHealth reports that the process is serving. It never touches the
// remote service.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, healthStatus("healthy"))
}

// handleReady fails while the gateway drains.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrInternal.Code, "not ready", map[string]any{"reason": err.Error()})
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, healthStatus("ready"))
}
