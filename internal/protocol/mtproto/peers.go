package mtproto

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// warmDialogLimit is how many dialogs are read to fill the peer cache
// before a numeric lookup gives up.
const warmDialogLimit = 100

// peerCache remembers access hashes seen in responses, keyed by marked id.
type peerCache struct {
	mu    sync.RWMutex
	peers map[int64]domain.PeerRef
	warm  bool
}

func newPeerCache() *peerCache {
	return &peerCache{peers: make(map[int64]domain.PeerRef)}
}

func (pc *peerCache) get(marked int64) (domain.PeerRef, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	p, ok := pc.peers[marked]
	return p, ok
}

func (pc *peerCache) put(p domain.PeerRef) {
	if p.Kind == domain.PeerSelf || p.IsZero() {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if old, ok := pc.peers[p.MarkedID()]; ok && p.AccessHash == 0 {
		p.AccessHash = old.AccessHash
	}
	pc.peers[p.MarkedID()] = p
}

// addEntities caches every addressable entity of a response.
func (pc *peerCache) addEntities(ents entities) {
	for _, u := range ents.users {
		pc.put(domain.UserPeer(u.ID, u.AccessHash))
	}
	for _, e := range ents.chats {
		if p, ok := domain.PeerOf(e); ok {
			pc.put(p)
		}
	}
}

// complete fills a missing access hash from the cache.
func (pc *peerCache) complete(p domain.PeerRef) domain.PeerRef {
	if p.AccessHash != 0 || p.Kind == domain.PeerChat {
		return p
	}
	if cached, ok := pc.get(p.MarkedID()); ok {
		p.AccessHash = cached.AccessHash
	}
	return p
}

// inputPeer converts a peer into its request form.
func (c *Client) inputPeer(p domain.PeerRef) tg.InputPeerClass {
	p = c.peers.complete(p)
	switch p.Kind {
	case domain.PeerUser:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case domain.PeerChat:
		return &tg.InputPeerChat{ChatID: p.ID}
	case domain.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	case domain.PeerSelf:
		return &tg.InputPeerSelf{}
	default:
		return &tg.InputPeerEmpty{}
	}
}

func (c *Client) inputChannel(p domain.PeerRef) *tg.InputChannel {
	p = c.peers.complete(p)
	return &tg.InputChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
}

// Lookup resolves an identifier the resolver could not decode itself:
// numeric ids are found among known peers, "+digits" as a phone number,
// and anything else as a username.
func (c *Client) Lookup(ctx context.Context, identifier string) (ref domain.PeerRef, err error) {
	ctx, span := c.span(ctx, "Lookup")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return domain.PeerRef{}, err
	}

	identifier = strings.TrimPrefix(strings.TrimSpace(identifier), "@")
	if identifier == "" {
		return domain.PeerRef{}, domain.ErrChatNotFound
	}

	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return c.lookupID(ctx, id)
	}

	resolver := peer.DefaultResolver(c.api)
	var in tg.InputPeerClass
	if phone, ok := strings.CutPrefix(identifier, "+"); ok && isDigits(phone) {
		in, err = resolver.ResolvePhone(ctx, phone)
	} else {
		in, err = resolver.ResolveDomain(ctx, identifier)
	}
	if err != nil {
		return domain.PeerRef{}, mapError(err)
	}
	ref, ok := inputPeerRef(in)
	if !ok {
		return domain.PeerRef{}, domain.ErrChatNotFound
	}
	c.peers.put(ref)
	return ref, nil
}

// lookupID finds a marked id among cached peers, reading the dialog list
// once per client to fill the cache.
func (c *Client) lookupID(ctx context.Context, id int64) (domain.PeerRef, error) {
	if p, ok := c.peers.get(id); ok {
		return p, nil
	}

	c.peers.mu.RLock()
	warm := c.peers.warm
	c.peers.mu.RUnlock()
	if !warm {
		if _, err := c.Dialogs(ctx, warmDialogLimit); err != nil {
			return domain.PeerRef{}, err
		}
		c.peers.mu.Lock()
		c.peers.warm = true
		c.peers.mu.Unlock()
		if p, ok := c.peers.get(id); ok {
			return p, nil
		}
	}
	return domain.PeerRef{}, domain.ErrChatNotFound.WithDetails("unknown peer id " + strconv.FormatInt(id, 10))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
