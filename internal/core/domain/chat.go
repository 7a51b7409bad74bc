package domain

// Entity is a chat entity classified once from the protocol's raw type.
// The set of implementations is closed: Channel, Supergroup, Group and
// Private.
type Entity interface {
	entity()
}

// Channel is a broadcast channel.
type Channel struct {
	ID                int64
	AccessHash        int64
	Title             string
	Username          string
	ParticipantsCount *int
	HasPhoto          bool
}

// Supergroup is a megagroup: a channel with group semantics.
type Supergroup struct {
	ID                int64
	AccessHash        int64
	Title             string
	Username          string
	ParticipantsCount *int
	HasPhoto          bool
}

// Group is a plain group chat. Plain groups have no public username.
type Group struct {
	ID                int64
	Title             string
	ParticipantsCount *int
	HasPhoto          bool
}

// Private is a one-to-one chat with a user or bot.
type Private struct {
	ID         int64
	AccessHash int64
	FirstName  string
	LastName   string
	Username   string
	Bot        bool
}

func (Channel) entity() {}
func (Supergroup) entity() {}
func (Group) entity() {}
func (Private) entity() {}

// ChatType is the client-facing chat kind.
type ChatType string

const (
	ChatTypeChannel    ChatType = "channel"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeGroup      ChatType = "group"
	ChatTypePrivate    ChatType = "private"
)

// Dialog is one entry of a dialog listing.
type Dialog struct {
	Entity      Entity
	UnreadCount int
	TopMessage  int
}

// ChatSummary is the client-facing view of a dialog.
type ChatSummary struct {
	Name         string   `json:"name"`
	ID           int64    `json:"id"`
	Type         ChatType `json:"type"`
	MembersCount *int     `json:"members_count,omitempty"`
	IsPrivate    bool     `json:"is_private"`
	Username     string   `json:"username,omitempty"`
}

// Summarize maps an entity to its client-facing summary. IsPrivate means the
// entity has no public username. It returns false for unknown entities.
func Summarize(e Entity) (ChatSummary, bool) {
	switch v := e.(type) {
	case Channel:
		return ChatSummary{
			Name:         v.Title,
			ID:           MarkedID(PeerChannel, v.ID),
			Type:         ChatTypeChannel,
			MembersCount: v.ParticipantsCount,
			IsPrivate:    v.Username == "",
			Username:     v.Username,
		}, true
	case Supergroup:
		return ChatSummary{
			Name:         v.Title,
			ID:           MarkedID(PeerChannel, v.ID),
			Type:         ChatTypeSupergroup,
			MembersCount: v.ParticipantsCount,
			IsPrivate:    v.Username == "",
			Username:     v.Username,
		}, true
	case Group:
		return ChatSummary{
			Name:         v.Title,
			ID:           MarkedID(PeerChat, v.ID),
			Type:         ChatTypeGroup,
			MembersCount: v.ParticipantsCount,
			IsPrivate:    true,
		}, true
	case Private:
		return ChatSummary{
			Name:      DisplayName(v.FirstName, v.LastName),
			ID:        v.ID,
			Type:      ChatTypePrivate,
			IsPrivate: v.Username == "",
			Username:  v.Username,
		}, true
	default:
		return ChatSummary{}, false
	}
}

// PeerOf returns the address of an entity.
func PeerOf(e Entity) (PeerRef, bool) {
	switch v := e.(type) {
	case Channel:
		return ChannelPeer(v.ID, v.AccessHash), true
	case Supergroup:
		return ChannelPeer(v.ID, v.AccessHash), true
	case Group:
		return ChatPeer(v.ID), true
	case Private:
		return UserPeer(v.ID, v.AccessHash), true
	default:
		return PeerRef{}, false
	}
}

// DisplayName joins first and last name the way chat clients show them.
func DisplayName(first, last string) string {
	switch {
	case last == "":
		return first
	case first == "":
		return last
	default:
		return first + " " + last
	}
}
