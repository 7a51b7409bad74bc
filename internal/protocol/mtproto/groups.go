package mtproto

import (
	"context"
	"errors"

	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// JoinPublic joins a public channel or supergroup by username.
func (c *Client) JoinPublic(ctx context.Context, username string) (info domain.GroupInfo, err error) {
	ctx, span := c.span(ctx, "JoinPublic")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.GroupInfo{}, err
	}
	in, err := peer.DefaultResolver(c.api).ResolveDomain(ctx, username)
	if err != nil {
		return domain.GroupInfo{}, mapError(err)
	}
	ch, ok := in.(*tg.InputPeerChannel)
	if !ok {
		return domain.GroupInfo{}, domain.ErrChatNotFound.WithDetails("not a group or channel")
	}

	upd, err := c.api.ChannelsJoinChannel(ctx, &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash})
	if err != nil {
		return domain.GroupInfo{}, mapError(err)
	}
	return c.joinedGroup(ctx, chatsOf(upd))
}

// JoinInvite joins through an invite hash. An invite the account already
// accepted resolves to the chat it belongs to.
func (c *Client) JoinInvite(ctx context.Context, hash string) (info domain.GroupInfo, err error) {
	ctx, span := c.span(ctx, "JoinInvite")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.GroupInfo{}, err
	}
	upd, err := c.api.MessagesImportChatInvite(ctx, hash)
	if err == nil {
		return c.joinedGroup(ctx, chatsOf(upd))
	}

	mapped := mapError(err)
	if !errors.Is(mapped, domain.ErrAlreadyParticipant) {
		return domain.GroupInfo{}, mapped
	}
	invite, err := c.api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		return domain.GroupInfo{}, mapError(err)
	}
	switch inv := invite.(type) {
	case *tg.ChatInviteAlready:
		return c.joinedGroup(ctx, []tg.ChatClass{inv.Chat})
	case *tg.ChatInvitePeek:
		return c.joinedGroup(ctx, []tg.ChatClass{inv.Chat})
	default:
		return domain.GroupInfo{}, mapped
	}
}

// joinedGroup describes the first usable chat of a join response.
func (c *Client) joinedGroup(ctx context.Context, chats []tg.ChatClass) (domain.GroupInfo, error) {
	for _, raw := range chats {
		ent, ok := convertChat(raw)
		if !ok {
			continue
		}
		p, _ := domain.PeerOf(ent)
		c.peers.put(p)
		s, _ := domain.Summarize(ent)
		return domain.GroupInfo{
			ID:          s.ID,
			Title:       s.Name,
			Username:    s.Username,
			Description: c.about(ctx, p),
		}, nil
	}
	return domain.GroupInfo{}, domain.ErrProtocol.WithDetails("join returned no chat")
}

// about reads the description of a group. Failures leave it empty.
func (c *Client) about(ctx context.Context, p domain.PeerRef) string {
	var (
		full *tg.MessagesChatFull
		err  error
	)
	switch p.Kind {
	case domain.PeerChannel:
		full, err = c.api.ChannelsGetFullChannel(ctx, c.inputChannel(p))
	case domain.PeerChat:
		full, err = c.api.MessagesGetFullChat(ctx, p.ID)
	default:
		return ""
	}
	if err != nil {
		c.log.Debug("group description unavailable", "peer", p.String(), "error", err)
		return ""
	}
	switch f := full.FullChat.(type) {
	case *tg.ChannelFull:
		return f.About
	case *tg.ChatFull:
		return f.About
	default:
		return ""
	}
}
