package mtproto

import (
	"context"
	"io"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// Dialogs lists up to limit dialogs, newest first, in batches of maxBatch.
func (c *Client) Dialogs(ctx context.Context, limit int) (out []domain.Dialog, err error) {
	ctx, span := c.span(ctx, "Dialogs", attribute.Int("limit", limit))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return nil, err
	}
	return collect(ctx, limit, cursor{}, c.dialogsBatch)
}

func (c *Client) dialogsBatch(ctx context.Context, at cursor, n int) (batch[domain.Dialog], error) {
	req := &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		OffsetID:   at.offsetID,
		OffsetDate: at.offsetDate,
		Limit:      n,
	}
	if at.offsetPeer != nil {
		req.OffsetPeer = c.inputPeer(*at.offsetPeer)
	}
	res, err := c.api.MessagesGetDialogs(ctx, req)
	if err != nil {
		return batch[domain.Dialog]{}, mapError(err)
	}

	var (
		b       batch[domain.Dialog]
		dialogs []tg.DialogClass
		msgs    []tg.MessageClass
		ents    entities
	)
	switch r := res.(type) {
	case *tg.MessagesDialogs:
		dialogs, msgs, ents = r.Dialogs, r.Messages, newEntities(r.Users, r.Chats)
		b.done = true
	case *tg.MessagesDialogsSlice:
		dialogs, msgs, ents = r.Dialogs, r.Messages, newEntities(r.Users, r.Chats)
	case *tg.MessagesDialogsNotModified:
		b.done = true
		return b, nil
	default:
		return b, domain.ErrProtocol.WithDetails("unexpected dialogs response")
	}
	c.peers.addEntities(ents)

	b.raw = len(dialogs)
	b.items = make([]domain.Dialog, 0, len(dialogs))
	for _, d := range dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}
		if ref, ok := peerRef(dialog.Peer); ok {
			b.next = cursor{
				offsetID:   dialog.TopMessage,
				offsetDate: messageDate(msgs, dialog.Peer, dialog.TopMessage),
				offsetPeer: &ref,
			}
		}
		ent, ok := ents.entity(dialog.Peer)
		if !ok {
			continue
		}
		b.items = append(b.items, domain.Dialog{
			Entity:      ent,
			UnreadCount: dialog.UnreadCount,
			TopMessage:  dialog.TopMessage,
		})
	}
	return b, nil
}

// messageDate finds the date of message id in peer among msgs, or 0.
func messageDate(msgs []tg.MessageClass, peer tg.PeerClass, id int) int {
	want, _ := peerRef(peer)
	for _, m := range msgs {
		var (
			date int
			in   tg.PeerClass
		)
		switch m := m.(type) {
		case *tg.Message:
			date, in = m.Date, m.PeerID
		case *tg.MessageService:
			date, in = m.Date, m.PeerID
		default:
			continue
		}
		if m.GetID() != id {
			continue
		}
		if got, ok := peerRef(in); ok && got.Kind == want.Kind && got.ID == want.ID {
			return date
		}
	}
	return 0
}

// History reads up to q.Limit messages below q.OffsetID, newest first. A
// search term or a date bound switches to a server-side search. Limits
// above maxBatch are read in several requests.
func (c *Client) History(ctx context.Context, p domain.PeerRef, q domain.HistoryQuery) (out []domain.Message, err error) {
	ctx, span := c.span(ctx, "History", peerAttr(p), attribute.Int("limit", q.Limit))
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context, at cursor, n int) (batch[domain.Message], error) {
		return c.historyBatch(ctx, p, q, at, n)
	}
	return collect(ctx, q.Limit, cursor{offsetID: int(q.OffsetID)}, fetch)
}

func (c *Client) historyBatch(ctx context.Context, p domain.PeerRef, q domain.HistoryQuery, at cursor, n int) (batch[domain.Message], error) {
	var (
		res tg.MessagesMessagesClass
		err error
	)
	if q.Filtered() {
		req := &tg.MessagesSearchRequest{
			Peer:     c.inputPeer(p),
			Q:        q.Search,
			Filter:   &tg.InputMessagesFilterEmpty{},
			OffsetID: at.offsetID,
			Limit:    n,
		}
		if q.FromDate != nil {
			req.MinDate = int(q.FromDate.Unix())
		}
		if q.ToDate != nil {
			req.MaxDate = int(q.ToDate.Unix())
		}
		res, err = c.api.MessagesSearch(ctx, req)
	} else {
		res, err = c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     c.inputPeer(p),
			OffsetID: at.offsetID,
			Limit:    n,
		})
	}
	if err != nil {
		return batch[domain.Message]{}, mapError(err)
	}

	msgs, ents, err := messagesOf(res)
	if err != nil {
		return batch[domain.Message]{}, err
	}
	c.peers.addEntities(ents)

	b := batch[domain.Message]{raw: len(msgs), next: at}
	_, b.done = res.(*tg.MessagesMessages)
	b.items = make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if msg, ok := convertMessage(m, ents); ok {
			b.items = append(b.items, msg)
		}
		b.next.offsetID = m.GetID()
	}
	return b, nil
}

// MessageByID fetches a single message.
func (c *Client) MessageByID(ctx context.Context, p domain.PeerRef, id int64) (msg domain.Message, found bool, err error) {
	ctx, span := c.span(ctx, "MessageByID", peerAttr(p))
	defer func() { tracer.EndSpan(span, err) }()

	raw, ents, err := c.fetchMessage(ctx, p, id)
	if err != nil || raw == nil {
		return domain.Message{}, false, err
	}
	msg, ok := convertMessage(raw, ents)
	return msg, ok, nil
}

// fetchMessage returns the raw message or nil when it does not exist.
func (c *Client) fetchMessage(ctx context.Context, p domain.PeerRef, id int64) (*tg.Message, entities, error) {
	if err := c.usable(); err != nil {
		return nil, entities{}, err
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: int(id)}}
	var (
		res tg.MessagesMessagesClass
		err error
	)
	if p.Kind == domain.PeerChannel {
		res, err = c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: c.inputChannel(p),
			ID:      ids,
		})
	} else {
		res, err = c.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, entities{}, mapError(err)
	}

	msgs, ents, err := messagesOf(res)
	if err != nil {
		return nil, entities{}, err
	}
	for _, m := range msgs {
		if msg, ok := m.(*tg.Message); ok && int64(msg.ID) == id {
			return msg, ents, nil
		}
	}
	return nil, ents, nil
}

// DownloadMedia streams the media of message id into w.
func (c *Client) DownloadMedia(ctx context.Context, p domain.PeerRef, id int64, w io.Writer) (info domain.MediaInfo, err error) {
	ctx, span := c.span(ctx, "DownloadMedia", peerAttr(p))
	defer func() { tracer.EndSpan(span, err) }()

	msg, _, err := c.fetchMessage(ctx, p, id)
	if err != nil {
		return domain.MediaInfo{}, err
	}
	if msg == nil {
		return domain.MediaInfo{}, domain.ErrMessageNotFound
	}

	loc, info, err := mediaLocation(msg.Media)
	if err != nil {
		return domain.MediaInfo{}, err
	}

	cw := &countingWriter{w: w}
	if _, err := downloader.NewDownloader().Download(c.api, loc).Stream(ctx, cw); err != nil {
		return domain.MediaInfo{}, mapError(err)
	}
	info.Size = cw.n
	span.SetAttributes(attribute.Int64("media.size", cw.n))
	return info, nil
}

// mediaLocation returns where attached media can be downloaded from.
func mediaLocation(m tg.MessageMediaClass) (tg.InputFileLocationClass, domain.MediaInfo, error) {
	switch m := m.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			break
		}
		return &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     largestPhotoSize(photo),
		}, domain.MediaInfo{Type: domain.MediaPhoto, ContentType: "image/jpeg"}, nil
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			break
		}
		info := domain.MediaInfo{
			Type:        documentType(doc),
			ContentType: doc.MimeType,
			FileName:    documentFileName(doc),
		}
		return &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}, info, nil
	}
	return nil, domain.MediaInfo{}, domain.ErrNoMedia
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
