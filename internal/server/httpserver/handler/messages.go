package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// handleSend handles POST /messages/send.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sent, err := h.messages.Send(r.Context(), SessionToken(r.Context()), req.ChatID.String(), req.Text, req.ReplyToMessageID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sendResponse(sent))
}

// handleSendWithFile handles POST /messages/send_with_file. The form
// carries chat_id, optional text and reply_to_message_id, and file.
func (h *Handler) handleSendWithFile(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUpload {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrInvalidArgument.Code, "file too large", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrInvalidArgument.Code, "file too large", nil)
			return
		}
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	chatID := strings.TrimSpace(r.FormValue("chat_id"))
	if chatID == "" {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("chat_id is required"))
		return
	}
	var replyTo int64
	if s := r.FormValue("reply_to_message_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.handleServiceError(w, r, domain.ErrMessageIDInvalid)
			return
		}
		replyTo = n
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("file is required"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.Wrap(err))
		return
	}

	sent, err := h.messages.SendWithFile(r.Context(), SessionToken(r.Context()), chatID, r.FormValue("text"), replyTo, domain.Upload{
		Name:     hdr.Filename,
		MimeType: hdr.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sendResponse(sent))
}

// handleDelete handles DELETE /messages/delete.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.messages.Delete(r.Context(), SessionToken(r.Context()), req.ChatID.String(), req.MessageIDs)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, DeleteMessageResponse{Success: true, DeletedMessages: deleted})
}

// handleForward handles POST /messages/forward.
func (h *Handler) handleForward(w http.ResponseWriter, r *http.Request) {
	var req ForwardMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sent, err := h.messages.Forward(r.Context(), SessionToken(r.Context()), req.FromChatID.String(), req.ToChatID.String(), req.MessageID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sendResponse(sent))
}

// handleEdit handles POST /messages/edit.
func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req EditMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sent, err := h.messages.Edit(r.Context(), SessionToken(r.Context()), req.ChatID.String(), req.MessageID, req.NewText)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sendResponse(sent))
}
