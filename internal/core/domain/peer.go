package domain

import "fmt"

// PeerKind discriminates PeerRef.
type PeerKind uint8

const (
	PeerUser PeerKind = iota + 1
	PeerChat
	PeerChannel
	PeerSelf
)

// String returns the kind name.
func (k PeerKind) String() string {
	switch k {
	case PeerUser:
		return "user"
	case PeerChat:
		return "chat"
	case PeerChannel:
		return "channel"
	case PeerSelf:
		return "self"
	default:
		return "unknown"
	}
}

// PeerRef is a protocol-native peer address. AccessHash qualifies users and
// channels; it is zero for plain chats and for channels decoded from a marked
// id without a lookup.
type PeerRef struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// UserPeer returns a user reference.
func UserPeer(id, accessHash int64) PeerRef {
	return PeerRef{Kind: PeerUser, ID: id, AccessHash: accessHash}
}

// ChatPeer returns a plain group reference.
func ChatPeer(id int64) PeerRef {
	return PeerRef{Kind: PeerChat, ID: id}
}

// ChannelPeer returns a channel or supergroup reference.
func ChannelPeer(id, accessHash int64) PeerRef {
	return PeerRef{Kind: PeerChannel, ID: id, AccessHash: accessHash}
}

// IsZero reports whether p is the zero PeerRef.
func (p PeerRef) IsZero() bool {
	return p.Kind == 0
}

// MarkedID returns the id in the client-facing marked form: users are
// positive, plain chats are negated, channels are prefixed with -100.
func (p PeerRef) MarkedID() int64 {
	return MarkedID(p.Kind, p.ID)
}

// String implements fmt.Stringer.
func (p PeerRef) String() string {
	return fmt.Sprintf("%s:%d", p.Kind, p.ID)
}

// channelMarkBase is added to a channel id before negation: -(1e12 + id).
const channelMarkBase = 1_000_000_000_000

// MarkedID converts a bare id into the marked form for kind.
func MarkedID(kind PeerKind, id int64) int64 {
	switch kind {
	case PeerChat:
		return -id
	case PeerChannel:
		return -(channelMarkBase + id)
	default:
		return id
	}
}
