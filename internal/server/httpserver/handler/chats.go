package handler

import (
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/pkg/token"
)

// handleListChats handles GET /chats.
func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	chats, err := h.chats.ListChats(r.Context(), SessionToken(r.Context()), int(limit))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ChatsResponse{Chats: chats, TotalCount: len(chats)})
}

// handleListMessages handles GET /messages/.
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	q, chatID, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	page, err := h.chats.ListMessages(r.Context(), SessionToken(r.Context()), chatID, q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, page)
}

func parseHistoryQuery(v url.Values) (domain.HistoryQuery, string, error) {
	var q domain.HistoryQuery
	chatID := v.Get("chat_id")
	if chatID == "" {
		return q, "", domain.ErrInvalidArgument.WithDetails("chat_id is required")
	}

	limit, err := queryLimit(v)
	if err != nil {
		return q, "", err
	}
	offset, err := queryInt(v, "offset_id", 0)
	if err != nil {
		return q, "", err
	}
	if offset < 0 || offset > math.MaxInt32 {
		return q, "", domain.ErrInvalidArgument.WithDetails("offset_id out of range")
	}
	q.Limit, q.OffsetID = int(limit), offset
	q.Search = v.Get("search")

	if q.FromDate, err = queryTime(v, "from_date"); err != nil {
		return q, "", err
	}
	if q.ToDate, err = queryTime(v, "to_date"); err != nil {
		return q, "", err
	}
	return q, chatID, nil
}

// queryLimit reads limit, which must be 1..domain.MaxHistoryLimit when set.
func queryLimit(v url.Values) (int64, error) {
	n, err := queryInt(v, "limit", domain.DefaultHistoryLimit)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > domain.MaxHistoryLimit {
		return 0, domain.CheckLimit(-1)
	}
	return n, nil
}

func queryInt(v url.Values, key string, def int64) (int64, error) {
	s := v.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument.WithDetails(key + " must be an integer")
	}
	return n, nil
}

func queryTime(v url.Values, key string) (*time.Time, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails(key + " must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// handleMedia handles GET /messages/media/{message_id}. The media is spooled
// to a temporary file so the response can carry a length and honor ranges.
func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.ParseInt(r.PathValue("message_id"), 10, 64)
	if err != nil {
		h.handleServiceError(w, r, domain.ErrMessageIDInvalid)
		return
	}
	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("chat_id is required"))
		return
	}

	spool, err := os.CreateTemp(h.spoolDir, "tokgate-media-*")
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInternal.Wrap(err))
		return
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	tok := SessionToken(r.Context())
	info, err := h.chats.DownloadMedia(r.Context(), tok, chatID, messageID, spool)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		h.handleServiceError(w, r, domain.ErrInternal.Wrap(err))
		return
	}

	h.logger.Debug("serving media",
		"token_fp", token.Fingerprint(tok),
		"message_id", messageID,
		"media_type", string(info.Type),
		"size", info.Size,
	)
	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(info.FileName, messageID))
	http.ServeContent(w, r, info.FileName, time.Time{}, spool)
}

func contentDisposition(name string, messageID int64) string {
	if name == "" {
		name = fmt.Sprintf("media_%d", messageID)
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
