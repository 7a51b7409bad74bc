package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// channelPrefix marks a channel in a negative marked id: -100<channel id>.
const channelPrefix = "100"

// PeerLookup is the part of a client the resolver needs.
type PeerLookup interface {
	Lookup(ctx context.Context, identifier string) (domain.PeerRef, error)
}

// Resolver turns client-supplied chat identifiers into protocol peers.
type Resolver struct{}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps identifier to a peer. The first matching rule wins:
//
//  1. negative, absolute value starting with "100": channel with the rest as
//     id and a zero access hash
//  2. other negative integers: plain chat with the absolute value as id
//  3. non-negative integers: looked up through the client
//  4. anything else: looked up as a username or phone; a leading '@' is fine
//
// A channel id that does not parse after the prefix falls through to rule 4.
//
// Channels from rule 1 carry no access hash. The remote service may reject
// them for channels the session has not seen; callers get ErrChatNotFound or
// a protocol error in that case.
func (r *Resolver) Resolve(ctx context.Context, client PeerLookup, identifier string) (domain.PeerRef, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.PeerRef{}, domain.ErrChatNotFound.WithDetails("empty chat identifier")
	}

	if n, err := strconv.ParseInt(identifier, 10, 64); err == nil && n < 0 {
		if peer, ok := markedPeer(identifier[1:]); ok {
			return peer, nil
		}
	}

	return r.lookup(ctx, client, identifier)
}

// markedPeer decodes the absolute decimal of a negative marked id.
func markedPeer(abs string) (domain.PeerRef, bool) {
	if rest, ok := strings.CutPrefix(abs, channelPrefix); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return domain.PeerRef{}, false
		}
		return domain.ChannelPeer(id, 0), true
	}
	id, err := strconv.ParseInt(abs, 10, 64)
	if err != nil {
		return domain.PeerRef{}, false
	}
	return domain.ChatPeer(id), true
}

// lookup keeps domain errors other than not-found, so a closed client, an
// expired session or a flood wait reach the caller as such. Only raw errors
// and not-found become ErrChatNotFound.
func (r *Resolver) lookup(ctx context.Context, client PeerLookup, identifier string) (domain.PeerRef, error) {
	peer, err := client.Lookup(ctx, identifier)
	if err == nil {
		return peer, nil
	}
	if de, ok := domain.AsDomainError(err); ok && de.Code != domain.ErrChatNotFound.Code {
		return domain.PeerRef{}, err
	}
	return domain.PeerRef{}, domain.ErrChatNotFound.WithCause(err)
}
