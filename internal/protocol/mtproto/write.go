package mtproto

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// photoTypes are uploaded as photos rather than documents.
var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func replyTo(id int64) tg.InputReplyToClass {
	if id <= 0 {
		return nil
	}
	return &tg.InputReplyToMessage{ReplyToMsgID: int(id)}
}

// SendMessage posts text to p.
func (c *Client) SendMessage(ctx context.Context, p domain.PeerRef, text string, reply int64) (sent domain.SentMessage, err error) {
	ctx, span := c.span(ctx, "SendMessage", peerAttr(p))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.SentMessage{}, err
	}
	upd, err := c.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     c.inputPeer(p),
		Message:  text,
		RandomID: rand.Int64(),
		ReplyTo:  replyTo(reply),
	})
	if err != nil {
		return domain.SentMessage{}, mapError(err)
	}
	return sentMessage(upd)
}

// SendFile uploads file and posts it with caption.
func (c *Client) SendFile(ctx context.Context, p domain.PeerRef, caption string, reply int64, file domain.Upload) (sent domain.SentMessage, err error) {
	ctx, span := c.span(ctx, "SendFile", peerAttr(p), attribute.Int("file.size", len(file.Data)))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.SentMessage{}, err
	}
	f, err := uploader.NewUploader(c.api).FromBytes(ctx, file.Name, file.Data)
	if err != nil {
		return domain.SentMessage{}, mapError(err)
	}

	var media tg.InputMediaClass
	if photoTypes[strings.ToLower(file.MimeType)] {
		media = &tg.InputMediaUploadedPhoto{File: f}
	} else {
		media = &tg.InputMediaUploadedDocument{
			File:     f,
			MimeType: file.MimeType,
			Attributes: []tg.DocumentAttributeClass{
				&tg.DocumentAttributeFilename{FileName: file.Name},
			},
		}
	}

	upd, err := c.api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
		Peer:     c.inputPeer(p),
		Media:    media,
		Message:  caption,
		RandomID: rand.Int64(),
		ReplyTo:  replyTo(reply),
	})
	if err != nil {
		return domain.SentMessage{}, mapError(err)
	}
	return sentMessage(upd)
}

// DeleteMessages revokes messages for everyone. Deleting nothing is
// reported as domain.ErrMessageIDInvalid.
func (c *Client) DeleteMessages(ctx context.Context, p domain.PeerRef, ids []int64) (err error) {
	ctx, span := c.span(ctx, "DeleteMessages", peerAttr(p), attribute.Int("count", len(ids)))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return err
	}
	raw := make([]int, len(ids))
	for i, id := range ids {
		raw[i] = int(id)
	}

	var affected *tg.MessagesAffectedMessages
	if p.Kind == domain.PeerChannel {
		affected, err = c.api.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{
			Channel: c.inputChannel(p),
			ID:      raw,
		})
	} else {
		affected, err = c.api.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     raw,
		})
	}
	if err != nil {
		return mapError(err)
	}
	if affected.PtsCount == 0 {
		return domain.ErrMessageIDInvalid
	}
	return nil
}

// ForwardMessage forwards message id from one peer to another.
func (c *Client) ForwardMessage(ctx context.Context, from, to domain.PeerRef, id int64) (sent domain.SentMessage, err error) {
	ctx, span := c.span(ctx, "ForwardMessage", peerAttr(from))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.SentMessage{}, err
	}
	upd, err := c.api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer: c.inputPeer(from),
		ToPeer:   c.inputPeer(to),
		ID:       []int{int(id)},
		RandomID: []int64{rand.Int64()},
	})
	if err != nil {
		return domain.SentMessage{}, mapError(err)
	}
	return sentMessage(upd)
}

// EditMessage replaces the text of message id.
func (c *Client) EditMessage(ctx context.Context, p domain.PeerRef, id int64, text string) (sent domain.SentMessage, err error) {
	ctx, span := c.span(ctx, "EditMessage", peerAttr(p))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.SentMessage{}, err
	}
	upd, err := c.api.MessagesEditMessage(ctx, &tg.MessagesEditMessageRequest{
		Peer:    c.inputPeer(p),
		ID:      int(id),
		Message: text,
	})
	if err != nil {
		return domain.SentMessage{}, mapError(err)
	}
	return sentMessage(upd)
}
