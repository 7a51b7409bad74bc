package service

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// Remote text limits, in characters.
const (
	MaxMessageLength = 4096
	MaxCaptionLength = 1024
)

const defaultContentType = "application/octet-stream"

// MessageService sends, deletes, forwards and edits messages.
type MessageService struct {
	registry *Registry
	resolver *Resolver
}

// NewMessageService creates a MessageService.
func NewMessageService(registry *Registry, resolver *Resolver) *MessageService {
	return &MessageService{registry: registry, resolver: resolver}
}

// target connects the caller and resolves chatID.
func (s *MessageService) target(ctx context.Context, tok, chatID string) (ProtocolClient, domain.PeerRef, error) {
	c, err := s.registry.GetOrCreate(ctx, tok)
	if err != nil {
		return nil, domain.PeerRef{}, err
	}
	peer, err := s.resolver.Resolve(ctx, c, chatID)
	if err != nil {
		return nil, domain.PeerRef{}, err
	}
	return c, peer, nil
}

// Send posts a text message. replyTo of zero sends without a reply.
func (s *MessageService) Send(ctx context.Context, tok, chatID, text string, replyTo int64) (domain.SentMessage, error) {
	if err := checkText(text, MaxMessageLength); err != nil {
		return domain.SentMessage{}, err
	}
	c, peer, err := s.target(ctx, tok, chatID)
	if err != nil {
		return domain.SentMessage{}, err
	}
	sent, err := c.SendMessage(ctx, peer, text, replyTo)
	if err != nil {
		return domain.SentMessage{}, remoteError(ctx, s.registry.metrics, err)
	}
	return sent, nil
}

// SendWithFile posts a file with an optional caption. The MIME type is
// guessed from the file name when the upload does not carry one.
func (s *MessageService) SendWithFile(ctx context.Context, tok, chatID, caption string, replyTo int64, file domain.Upload) (domain.SentMessage, error) {
	if len(file.Data) == 0 {
		return domain.SentMessage{}, domain.ErrInvalidArgument.WithDetails("file is empty")
	}
	if strings.TrimSpace(file.Name) == "" {
		return domain.SentMessage{}, domain.ErrInvalidArgument.WithDetails("file name is required")
	}
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return domain.SentMessage{}, domain.ErrMessageTooLong.WithDetails("message caption is too long")
	}
	file.Name = filepath.Base(file.Name)
	file.MimeType = GuessMimeType(file.Name, file.MimeType)

	c, peer, err := s.target(ctx, tok, chatID)
	if err != nil {
		return domain.SentMessage{}, err
	}
	sent, err := c.SendFile(ctx, peer, caption, replyTo, file)
	if err != nil {
		return domain.SentMessage{}, remoteError(ctx, s.registry.metrics, err)
	}
	return sent, nil
}

// GuessMimeType keeps a specific declared type and otherwise guesses from
// the extension, falling back to application/octet-stream.
func GuessMimeType(name, declared string) string {
	if declared != "" && declared != defaultContentType {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return defaultContentType
}

// skippedOnDelete lists per-message failures Delete tolerates.
var skippedOnDelete = []*domain.DomainError{
	domain.ErrMessageIDInvalid,
	domain.ErrDeleteForbidden,
	domain.ErrAuthorRequired,
}

// Delete removes messages one by one, skipping those that cannot be
// deleted, and returns the ids that were. It fails with ErrNothingDeleted
// when none were.
func (s *MessageService) Delete(ctx context.Context, tok, chatID string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("message_ids is required")
	}
	c, peer, err := s.target(ctx, tok, chatID)
	if err != nil {
		return nil, err
	}

	deleted := make([]int64, 0, len(ids))
	for _, id := range ids {
		err := c.DeleteMessages(ctx, peer, []int64{id})
		if err == nil {
			deleted = append(deleted, id)
			continue
		}
		if isSkippedOnDelete(err) {
			continue
		}
		return nil, remoteError(ctx, s.registry.metrics, err)
	}

	if len(deleted) == 0 {
		return nil, domain.ErrNothingDeleted
	}
	return deleted, nil
}

func isSkippedOnDelete(err error) bool {
	for _, skip := range skippedOnDelete {
		if errors.Is(err, skip) {
			return true
		}
	}
	return false
}

// Forward copies one message from one chat to another.
func (s *MessageService) Forward(ctx context.Context, tok, fromChatID, toChatID string, messageID int64) (domain.SentMessage, error) {
	if messageID <= 0 {
		return domain.SentMessage{}, domain.ErrMessageIDInvalid
	}
	c, from, err := s.target(ctx, tok, fromChatID)
	if err != nil {
		return domain.SentMessage{}, err
	}
	to, err := s.resolver.Resolve(ctx, c, toChatID)
	if err != nil {
		return domain.SentMessage{}, err
	}
	sent, err := c.ForwardMessage(ctx, from, to, messageID)
	if err != nil {
		return domain.SentMessage{}, remoteError(ctx, s.registry.metrics, err)
	}
	return sent, nil
}

// Edit replaces the text of a message. messageID arrives as a string from
// the client and must parse as a positive integer.
func (s *MessageService) Edit(ctx context.Context, tok, chatID, messageID, text string) (domain.SentMessage, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(messageID), 10, 64)
	if err != nil || id <= 0 {
		return domain.SentMessage{}, domain.ErrMessageIDInvalid
	}
	if err := checkText(text, MaxMessageLength); err != nil {
		return domain.SentMessage{}, err
	}
	c, peer, err := s.target(ctx, tok, chatID)
	if err != nil {
		return domain.SentMessage{}, err
	}
	sent, err := c.EditMessage(ctx, peer, id, text)
	if err != nil {
		return domain.SentMessage{}, remoteError(ctx, s.registry.metrics, err)
	}
	return sent, nil
}

func checkText(text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > limit {
		return domain.ErrMessageTooLong
	}
	return nil
}
