package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// ChatService serves dialog listings, history pages and media downloads.
type ChatService struct {
	registry *Registry
	resolver *Resolver
	history  *HistoryFetcher
}

// NewChatService creates a ChatService.
func NewChatService(registry *Registry, resolver *Resolver, history *HistoryFetcher) *ChatService {
	return &ChatService{registry: registry, resolver: resolver, history: history}
}

// ListChats lists the caller's dialogs.
func (s *ChatService) ListChats(ctx context.Context, tok string, limit int) ([]domain.ChatSummary, error) {
	c, err := s.registry.GetOrCreate(ctx, tok)
	if err != nil {
		return nil, err
	}
	return s.history.ListChats(ctx, c, limit)
}

// ListMessages fetches one page of history for chatID.
func (s *ChatService) ListMessages(ctx context.Context, tok, chatID string, q domain.HistoryQuery) (domain.MessagePage, error) {
	if q.FromDate != nil && q.ToDate != nil && q.FromDate.After(*q.ToDate) {
		return domain.MessagePage{}, domain.ErrInvalidArgument.WithDetails("from_date is after to_date")
	}
	if q.OffsetID < 0 {
		return domain.MessagePage{}, domain.ErrInvalidArgument.WithDetails("offset_id must not be negative")
	}

	c, err := s.registry.GetOrCreate(ctx, tok)
	if err != nil {
		return domain.MessagePage{}, err
	}
	peer, err := s.resolver.Resolve(ctx, c, chatID)
	if err != nil {
		return domain.MessagePage{}, err
	}
	return s.history.ListMessages(ctx, c, peer, q)
}

// DownloadMedia streams the media of one message into w and describes it.
func (s *ChatService) DownloadMedia(ctx context.Context, tok, chatID string, messageID int64, w io.Writer) (domain.MediaInfo, error) {
	if messageID <= 0 {
		return domain.MediaInfo{}, domain.ErrMessageIDInvalid
	}

	c, err := s.registry.GetOrCreate(ctx, tok)
	if err != nil {
		return domain.MediaInfo{}, err
	}
	peer, err := s.resolver.Resolve(ctx, c, chatID)
	if err != nil {
		return domain.MediaInfo{}, err
	}

	msg, ok, err := c.MessageByID(ctx, peer, messageID)
	if err != nil {
		return domain.MediaInfo{}, remoteError(ctx, s.registry.metrics, err)
	}
	if !ok {
		return domain.MediaInfo{}, domain.ErrMessageNotFound
	}
	if msg.MediaType == nil {
		return domain.MediaInfo{}, domain.ErrNoMedia
	}

	info, err := c.DownloadMedia(ctx, peer, messageID, w)
	if err != nil {
		return domain.MediaInfo{}, remoteError(ctx, s.registry.metrics, err)
	}
	return completeMediaInfo(info, *msg.MediaType, messageID), nil
}

// completeMediaInfo settles the content type and file name. Photos are
// always served as JPEG and videos as MP4. Other media keep the attributes
// the protocol reported.
func completeMediaInfo(info domain.MediaInfo, typ domain.MediaType, messageID int64) domain.MediaInfo {
	if info.Type == "" {
		info.Type = typ
	}
	if info.FileName == "" {
		info.FileName = fmt.Sprintf("%s_%d", info.Type, messageID)
	}

	switch info.Type {
	case domain.MediaPhoto:
		info.ContentType = "image/jpeg"
		if !strings.HasSuffix(info.FileName, ".jpg") {
			info.FileName += ".jpg"
		}
	case domain.MediaVideo:
		info.ContentType = "video/mp4"
		if !strings.HasSuffix(info.FileName, ".mp4") {
			info.FileName += ".mp4"
		}
	default:
		if info.ContentType == "" {
			info.ContentType = defaultContentType
		}
	}
	return info
}
