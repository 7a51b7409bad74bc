package domain

import (
	"fmt"
	"time"
)

// MediaType is the client-facing media classification.
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaVoice    MediaType = "voice"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

// Message is one history entry.
type Message struct {
	ID             int64      `json:"id"`
	Text           *string    `json:"text"`
	Date           time.Time  `json:"date"`
	SenderID       *int64     `json:"sender_id"`
	SenderUsername *string    `json:"sender_username"`
	SenderName     *string    `json:"sender_name"`
	ReplyToMsgID   *int64     `json:"reply_to_msg_id,omitempty"`
	ForwardFrom    *string    `json:"forward_from,omitempty"`
	MediaType      *MediaType `json:"media_type,omitempty"`
	IsPinned       bool       `json:"is_pinned"`
}

// Page size bounds. Zero selects DefaultHistoryLimit; requests above
// MaxHistoryLimit are rejected.
const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// CheckLimit rejects page sizes outside 0..MaxHistoryLimit.
func CheckLimit(n int) error {
	if n < 0 || n > MaxHistoryLimit {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}
	return nil
}

// PageCursor is a position in message history. Messages are returned newest
// first, starting below OffsetID (zero means from the newest message).
type PageCursor struct {
	OffsetID int64
	Limit    int
}

// HistoryQuery is a bounded history request.
type HistoryQuery struct {
	PageCursor
	Search   string
	FromDate *time.Time
	ToDate   *time.Time
}

// Filtered reports whether the query needs a search rather than a plain
// history read.
func (q HistoryQuery) Filtered() bool {
	return q.Search != "" || q.FromDate != nil || q.ToDate != nil
}

// MessagePage is one page of history. HasMore approximates "more history
// exists": it is true when the page is full.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	TotalCount int       `json:"total_count"`
	HasMore    bool      `json:"has_more"`
	NextOffset *int64    `json:"next_offset"`
}

// NewMessagePage derives HasMore and NextOffset from a fetched page.
func NewMessagePage(msgs []Message, limit int) MessagePage {
	page := MessagePage{
		Messages:   msgs,
		TotalCount: len(msgs),
		HasMore:    limit > 0 && len(msgs) == limit,
	}
	if page.HasMore {
		next := msgs[len(msgs)-1].ID
		page.NextOffset = &next
	}
	return page
}

// SentMessage is the result of a send, forward or edit.
type SentMessage struct {
	MessageID int64     `json:"message_id"`
	Date      time.Time `json:"date"`
}

// Upload is a file attached to an outgoing message.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// MediaInfo describes downloaded media.
type MediaInfo struct {
	Type        MediaType
	ContentType string
	FileName    string
	Size        int64
}
