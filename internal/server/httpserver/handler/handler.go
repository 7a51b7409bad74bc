package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// AuthAPI is the login flow.
type AuthAPI interface {
	SendCode(ctx context.Context, phone string, creds domain.APICredentials) (domain.AuthResult, error)
	VerifyCode(ctx context.Context, tok, code string) (domain.AuthResult, error)
	VerifyPassword(ctx context.Context, tok, password string) (domain.AuthResult, error)
	Logout(ctx context.Context, tok string) error
}

// ChatAPI serves dialogs, history and media.
type ChatAPI interface {
	ListChats(ctx context.Context, tok string, limit int) ([]domain.ChatSummary, error)
	ListMessages(ctx context.Context, tok, chatID string, q domain.HistoryQuery) (domain.MessagePage, error)
	DownloadMedia(ctx context.Context, tok, chatID string, messageID int64, w io.Writer) (domain.MediaInfo, error)
}

// MessageAPI writes messages.
type MessageAPI interface {
	Send(ctx context.Context, tok, chatID, text string, replyTo int64) (domain.SentMessage, error)
	SendWithFile(ctx context.Context, tok, chatID, caption string, replyTo int64, file domain.Upload) (domain.SentMessage, error)
	Delete(ctx context.Context, tok, chatID string, ids []int64) ([]int64, error)
	Forward(ctx context.Context, tok, fromChatID, toChatID string, messageID int64) (domain.SentMessage, error)
	Edit(ctx context.Context, tok, chatID, messageID, text string) (domain.SentMessage, error)
}

// GroupAPI joins groups.
type GroupAPI interface {
	Join(ctx context.Context, tok, identifier string) (domain.GroupInfo, error)
}

// ReadyFunc reports whether the gateway accepts traffic.
type ReadyFunc func() error

// Config wires the handler to its services.
type Config struct {
	Auth     AuthAPI
	Chats    ChatAPI
	Messages MessageAPI
	Groups   GroupAPI
	Ready    ReadyFunc
	// MaxUploadBytes bounds multipart uploads. Zero selects 50 MiB.
	MaxUploadBytes int64
	// SpoolDir holds media while it is served. Empty uses os.TempDir.
	SpoolDir string
	Logger   logger.Logger
}

// Handler serves the gateway API.
type Handler struct {
	auth      AuthAPI
	chats     ChatAPI
	messages  MessageAPI
	groups    GroupAPI
	ready     ReadyFunc
	maxUpload int64
	spoolDir  string
	logger    logger.Logger
	mux       *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		auth:      cfg.Auth,
		chats:     cfg.Chats,
		messages:  cfg.Messages,
		groups:    cfg.Groups,
		ready:     cfg.Ready,
		maxUpload: cfg.MaxUploadBytes,
		spoolDir:  cfg.SpoolDir,
		logger:    cfg.Logger,
		mux:       http.NewServeMux(),
	}
	if h.maxUpload <= 0 {
		h.maxUpload = 50 << 20
	}
	if h.logger == nil {
		h.logger = logger.Default()
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Route returns the pattern r matches, or "unmatched". It keeps metric
// labels bounded.
func (h *Handler) Route(r *http.Request) string {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		return pattern
	}
	return "unmatched"
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("POST /auth/send_code", h.handleSendCode)
	h.mux.HandleFunc("POST /auth/verify_code", h.handleVerifyCode)
	h.mux.HandleFunc("POST /auth/verify_password", h.handleVerifyPassword)
	h.mux.HandleFunc("DELETE /auth/logout", h.handleLogout)

	h.mux.HandleFunc("GET /chats", h.handleListChats)
	h.mux.HandleFunc("GET /messages/{$}", h.handleListMessages)
	h.mux.HandleFunc("GET /messages/media/{message_id}", h.handleMedia)

	h.mux.HandleFunc("POST /messages/send", h.handleSend)
	h.mux.HandleFunc("POST /messages/send_with_file", h.handleSendWithFile)
	h.mux.HandleFunc("DELETE /messages/delete", h.handleDelete)
	h.mux.HandleFunc("POST /messages/forward", h.handleForward)
	h.mux.HandleFunc("POST /messages/edit", h.handleEdit)

	h.mux.HandleFunc("POST /groups/join", h.handleJoin)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	WriteError(w, r, status, code, message, details)
}

// WriteError writes an error envelope. Middleware uses it too.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	response := NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		logger.L(r.Context()).Error("internal error", "error", err)
		de = domain.ErrInternal
	}

	status := StatusFor(de.Code)
	var details map[string]any
	if de.Details != "" {
		details = map[string]any{"reason": de.Details}
	}
	if status == http.StatusTooManyRequests {
		wait := de.WaitSeconds()
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		details = map[string]any{"wait_seconds": wait, "reason": de.Details}
	}
	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("request failed", "code", de.Code, "error", err)
	}
	h.writeError(w, r, status, de.Code, de.Message, details)
}

// StatusFor maps an error code to its HTTP status: the trailing four digits
// divided by ten, so TG-CHAT-4040 maps to 404.
func StatusFor(code string) int {
	i := strings.LastIndexByte(code, '-')
	if i < 0 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil || n < 1000 || n > 5999 {
		return http.StatusInternalServerError
	}
	return n / 10
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrInvalidArgument.Code, "request body too large", nil)
			return false
		}
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "invalid request body", map[string]any{"reason": err.Error()})
		return false
	}
	return true
}
