package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics and media downloads).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ChatID is a chat identifier that accepts both JSON strings and numbers.
type ChatID string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ChatID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ChatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*c = ChatID(n.String())
	return nil
}

func (c ChatID) String() string {
	return strings.TrimSpace(string(c))
}

// SendCodeRequest is the request body for POST /auth/send_code.
type SendCodeRequest struct {
	Phone   string `json:"phone"`
	APIID   uint64 `json:"api_id"`
	APIHash string `json:"api_hash"`
}

// VerifyCodeRequest is the request body for POST /auth/verify_code.
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// VerifyPasswordRequest is the request body for POST /auth/verify_password.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// LogoutResponse is the response body for DELETE /auth/logout.
type LogoutResponse struct {
	Message string `json:"message"`
}

// ChatsResponse is the response body for GET /chats.
type ChatsResponse struct {
	Chats      []domain.ChatSummary `json:"chats"`
	TotalCount int                  `json:"total_count"`
}

// SendMessageRequest is the request body for POST /messages/send.
type SendMessageRequest struct {
	ChatID           ChatID `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

// SendMessageResponse is returned by send, forward and edit.
type SendMessageResponse struct {
	Success   bool      `json:"success"`
	MessageID int64     `json:"message_id"`
	Date      time.Time `json:"date"`
}

// DeleteMessageRequest is the request body for DELETE /messages/delete.
type DeleteMessageRequest struct {
	ChatID     ChatID  `json:"chat_id"`
	MessageIDs []int64 `json:"message_ids"`
}

// DeleteMessageResponse is the response body for DELETE /messages/delete.
type DeleteMessageResponse struct {
	Success         bool    `json:"success"`
	DeletedMessages []int64 `json:"deleted_messages"`
}

// ForwardMessageRequest is the request body for POST /messages/forward.
type ForwardMessageRequest struct {
	FromChatID ChatID `json:"from_chat_id"`
	ToChatID   ChatID `json:"to_chat_id"`
	MessageID  int64  `json:"message_id"`
}

// EditMessageRequest is the request body for POST /messages/edit. The
// message id is a string on the wire.
type EditMessageRequest struct {
	ChatID    ChatID `json:"chat_id"`
	MessageID string `json:"message_id"`
	NewText   string `json:"new_text"`
}

// JoinGroupRequest is the request body for POST /groups/join.
type JoinGroupRequest struct {
	GroupIdentifier string `json:"group_identifier"`
}

// JoinResponse is the response body for POST /groups/join.
type JoinResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

func sendResponse(m domain.SentMessage) SendMessageResponse {
	return SendMessageResponse{Success: true, MessageID: m.MessageID, Date: m.Date}
}
