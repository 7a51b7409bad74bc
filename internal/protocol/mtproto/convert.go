package mtproto

import (
	"strconv"
	"time"

	"github.com/gotd/td/tg"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// entities indexes the users and chats returned alongside a response.
type entities struct {
	users map[int64]*tg.User
	chats map[int64]domain.Entity
}

func newEntities(users []tg.UserClass, chats []tg.ChatClass) entities {
	e := entities{
		users: make(map[int64]*tg.User, len(users)),
		chats: make(map[int64]domain.Entity, len(chats)),
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			e.users[user.ID] = user
		}
	}
	for _, ch := range chats {
		if ent, ok := convertChat(ch); ok {
			id, _ := entityID(ent)
			e.chats[id] = ent
		}
	}
	return e
}

// entity returns the entity a peer refers to.
func (e entities) entity(p tg.PeerClass) (domain.Entity, bool) {
	switch p := p.(type) {
	case *tg.PeerUser:
		if u, ok := e.users[p.UserID]; ok {
			return convertUser(u), true
		}
	case *tg.PeerChat:
		ent, ok := e.chats[p.ChatID]
		return ent, ok
	case *tg.PeerChannel:
		ent, ok := e.chats[p.ChannelID]
		return ent, ok
	}
	return nil, false
}

func convertUser(u *tg.User) domain.Private {
	return domain.Private{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Bot:        u.Bot,
	}
}

// convertChat classifies a raw chat. Forbidden and empty chats are dropped.
func convertChat(c tg.ChatClass) (domain.Entity, bool) {
	switch c := c.(type) {
	case *tg.Chat:
		n := c.ParticipantsCount
		return domain.Group{
			ID:                c.ID,
			Title:             c.Title,
			ParticipantsCount: &n,
			HasPhoto:          hasChatPhoto(c.Photo),
		}, true
	case *tg.Channel:
		var count *int
		if n, ok := c.GetParticipantsCount(); ok {
			count = &n
		}
		if c.Megagroup {
			return domain.Supergroup{
				ID:                c.ID,
				AccessHash:        c.AccessHash,
				Title:             c.Title,
				Username:          c.Username,
				ParticipantsCount: count,
				HasPhoto:          hasChatPhoto(c.Photo),
			}, true
		}
		return domain.Channel{
			ID:                c.ID,
			AccessHash:        c.AccessHash,
			Title:             c.Title,
			Username:          c.Username,
			ParticipantsCount: count,
			HasPhoto:          hasChatPhoto(c.Photo),
		}, true
	default:
		return nil, false
	}
}

func hasChatPhoto(p tg.ChatPhotoClass) bool {
	_, ok := p.(*tg.ChatPhoto)
	return ok
}

// entityID returns the bare id of a chat entity.
func entityID(e domain.Entity) (int64, bool) {
	p, ok := domain.PeerOf(e)
	return p.ID, ok
}

// peerRef converts a raw peer without access hashes.
func peerRef(p tg.PeerClass) (domain.PeerRef, bool) {
	switch p := p.(type) {
	case *tg.PeerUser:
		return domain.UserPeer(p.UserID, 0), true
	case *tg.PeerChat:
		return domain.ChatPeer(p.ChatID), true
	case *tg.PeerChannel:
		return domain.ChannelPeer(p.ChannelID, 0), true
	default:
		return domain.PeerRef{}, false
	}
}

func inputPeerRef(p tg.InputPeerClass) (domain.PeerRef, bool) {
	switch p := p.(type) {
	case *tg.InputPeerUser:
		return domain.UserPeer(p.UserID, p.AccessHash), true
	case *tg.InputPeerChat:
		return domain.ChatPeer(p.ChatID), true
	case *tg.InputPeerChannel:
		return domain.ChannelPeer(p.ChannelID, p.AccessHash), true
	case *tg.InputPeerSelf:
		return domain.PeerRef{Kind: domain.PeerSelf}, true
	default:
		return domain.PeerRef{}, false
	}
}

// convertMessage maps a raw message. Service messages keep their id and
// date but carry no text.
func convertMessage(m tg.MessageClass, ents entities) (domain.Message, bool) {
	switch m := m.(type) {
	case *tg.Message:
		out := domain.Message{
			ID:       int64(m.ID),
			Date:     time.Unix(int64(m.Date), 0).UTC(),
			IsPinned: m.Pinned,
		}
		if m.Message != "" {
			text := m.Message
			out.Text = &text
		}
		setSender(&out, senderPeer(m.FromID, m.PeerID), ents)
		if h, ok := m.ReplyTo.(*tg.MessageReplyHeader); ok {
			if id, ok := h.GetReplyToMsgID(); ok && id != 0 {
				reply := int64(id)
				out.ReplyToMsgID = &reply
			}
		}
		if fwd, ok := m.GetFwdFrom(); ok {
			if from := forwardName(fwd, ents); from != "" {
				out.ForwardFrom = &from
			}
		}
		out.MediaType = classifyMedia(m.Media)
		return out, true
	case *tg.MessageService:
		out := domain.Message{
			ID:   int64(m.ID),
			Date: time.Unix(int64(m.Date), 0).UTC(),
		}
		setSender(&out, senderPeer(m.FromID, m.PeerID), ents)
		return out, true
	default:
		return domain.Message{}, false
	}
}

// senderPeer is the author of a message. Channel posts have no from id and
// are attributed to the channel.
func senderPeer(from, to tg.PeerClass) tg.PeerClass {
	if from != nil {
		return from
	}
	if _, ok := to.(*tg.PeerChannel); ok {
		return to
	}
	if _, ok := to.(*tg.PeerUser); ok {
		return to
	}
	return nil
}

func setSender(out *domain.Message, p tg.PeerClass, ents entities) {
	ref, ok := peerRef(p)
	if !ok {
		return
	}
	id := ref.MarkedID()
	out.SenderID = &id

	ent, ok := ents.entity(p)
	if !ok {
		return
	}
	if s, ok := domain.Summarize(ent); ok {
		name := s.Name
		out.SenderName = &name
		if s.Username != "" {
			username := s.Username
			out.SenderUsername = &username
		}
	}
}

func forwardName(fwd tg.MessageFwdHeader, ents entities) string {
	if name, ok := fwd.GetFromName(); ok && name != "" {
		return name
	}
	from, ok := fwd.GetFromID()
	if !ok {
		return ""
	}
	if ent, ok := ents.entity(from); ok {
		if s, ok := domain.Summarize(ent); ok {
			return s.Name
		}
	}
	if ref, ok := peerRef(from); ok {
		return strconv.FormatInt(ref.MarkedID(), 10)
	}
	return ""
}

// classifyMedia maps attached media to a media type. Photos are checked
// first, then documents by attribute: video, voice, audio. Any other
// document is a document. Non-file media such as web page previews, polls
// and locations have no media type.
func classifyMedia(m tg.MessageMediaClass) *domain.MediaType {
	var typ domain.MediaType
	switch m := m.(type) {
	case *tg.MessageMediaPhoto:
		if _, ok := m.Photo.(*tg.Photo); !ok {
			return nil
		}
		typ = domain.MediaPhoto
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return nil
		}
		typ = documentType(doc)
	default:
		return nil
	}
	return &typ
}

func documentType(doc *tg.Document) domain.MediaType {
	var audio, voice bool
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeVideo:
			return domain.MediaVideo
		case *tg.DocumentAttributeAudio:
			audio = true
			voice = voice || a.Voice
		}
	}
	switch {
	case voice:
		return domain.MediaVoice
	case audio:
		return domain.MediaAudio
	default:
		return domain.MediaDocument
	}
}

// documentFileName returns the file name attribute, if any.
func documentFileName(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if a, ok := attr.(*tg.DocumentAttributeFilename); ok {
			return a.FileName
		}
	}
	return ""
}

// largestPhotoSize returns the type of the biggest photo size.
func largestPhotoSize(p *tg.Photo) string {
	var (
		best     string
		bestSize = -1
	)
	for _, s := range p.Sizes {
		var typ string
		size := 0
		switch s := s.(type) {
		case *tg.PhotoSize:
			typ, size = s.Type, s.Size
		case *tg.PhotoSizeProgressive:
			typ = s.Type
			if len(s.Sizes) > 0 {
				size = s.Sizes[len(s.Sizes)-1]
			}
		default:
			continue
		}
		if size > bestSize {
			best, bestSize = typ, size
		}
	}
	return best
}

// messagesOf unpacks a messages response.
func messagesOf(res tg.MessagesMessagesClass) ([]tg.MessageClass, entities, error) {
	switch r := res.(type) {
	case *tg.MessagesMessages:
		return r.Messages, newEntities(r.Users, r.Chats), nil
	case *tg.MessagesMessagesSlice:
		return r.Messages, newEntities(r.Users, r.Chats), nil
	case *tg.MessagesChannelMessages:
		return r.Messages, newEntities(r.Users, r.Chats), nil
	case *tg.MessagesMessagesNotModified:
		return nil, newEntities(nil, nil), nil
	default:
		return nil, entities{}, domain.ErrProtocol.WithDetails("unexpected messages response")
	}
}

// sentMessage extracts the resulting message from an updates response.
func sentMessage(upd tg.UpdatesClass) (domain.SentMessage, error) {
	var list []tg.UpdateClass
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return domain.SentMessage{MessageID: int64(u.ID), Date: time.Unix(int64(u.Date), 0).UTC()}, nil
	case *tg.Updates:
		list = u.Updates
	case *tg.UpdatesCombined:
		list = u.Updates
	default:
		return domain.SentMessage{}, domain.ErrProtocol.WithDetails("unexpected updates response")
	}

	var fallback int
	for _, item := range list {
		var msg tg.MessageClass
		switch v := item.(type) {
		case *tg.UpdateNewMessage:
			msg = v.Message
		case *tg.UpdateNewChannelMessage:
			msg = v.Message
		case *tg.UpdateEditMessage:
			msg = v.Message
		case *tg.UpdateEditChannelMessage:
			msg = v.Message
		case *tg.UpdateMessageID:
			fallback = v.ID
			continue
		default:
			continue
		}
		if m, ok := msg.(*tg.Message); ok {
			return domain.SentMessage{MessageID: int64(m.ID), Date: time.Unix(int64(m.Date), 0).UTC()}, nil
		}
	}
	if fallback != 0 {
		return domain.SentMessage{MessageID: int64(fallback), Date: time.Now().UTC()}, nil
	}
	return domain.SentMessage{}, domain.ErrProtocol.WithDetails("no message in updates")
}

// chatsOf returns the chats carried by an updates response.
func chatsOf(upd tg.UpdatesClass) []tg.ChatClass {
	switch u := upd.(type) {
	case *tg.Updates:
		return u.Chats
	case *tg.UpdatesCombined:
		return u.Chats
	default:
		return nil
	}
}
