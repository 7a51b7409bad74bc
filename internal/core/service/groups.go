package service

import (
	"context"
	"strings"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// JoinTarget is a parsed join identifier: either an invite hash or a
// public username.
type JoinTarget struct {
	InviteHash string
	Username   string
}

// IsInvite reports whether the target is an invite link.
func (t JoinTarget) IsInvite() bool {
	return t.Username == ""
}

var linkPrefixes = []string{"https://t.me/", "http://t.me/", "t.me/"}

// ParseJoinTarget parses a group identifier:
//
//	https://t.me/joinchat/<hash>, t.me/+<hash>, +<hash>  invite
//	https://t.me/<name>, @<name>, <name>                public username
func ParseJoinTarget(identifier string) (JoinTarget, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return JoinTarget{}, domain.ErrInvalidArgument.WithDetails("group_identifier is required")
	}

	for _, prefix := range linkPrefixes {
		rest, ok := strings.CutPrefix(identifier, prefix)
		if !ok {
			continue
		}
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		last := strings.TrimPrefix(parts[len(parts)-1], "@")
		switch {
		case parts[0] == "joinchat":
			if len(parts) < 2 {
				return JoinTarget{}, domain.ErrInviteHashEmpty
			}
			return inviteTarget(last)
		case strings.HasPrefix(last, "+"):
			return inviteTarget(last[1:])
		default:
			return usernameTarget(last)
		}
	}

	if hash, ok := strings.CutPrefix(identifier, "+"); ok {
		return inviteTarget(hash)
	}
	return usernameTarget(strings.TrimPrefix(identifier, "@"))
}

func inviteTarget(hash string) (JoinTarget, error) {
	if hash == "" {
		return JoinTarget{}, domain.ErrInviteHashEmpty
	}
	return JoinTarget{InviteHash: hash}, nil
}

func usernameTarget(name string) (JoinTarget, error) {
	if name == "" {
		return JoinTarget{}, domain.ErrChatNotFound.WithDetails("empty group username")
	}
	return JoinTarget{Username: name}, nil
}

// GroupService joins groups and channels.
type GroupService struct {
	registry *Registry
}

// NewGroupService creates a GroupService.
func NewGroupService(registry *Registry) *GroupService {
	return &GroupService{registry: registry}
}

// Join joins the group named by identifier. Joining through an invite the
// account already accepted returns the chat it belongs to.
func (s *GroupService) Join(ctx context.Context, tok, identifier string) (domain.GroupInfo, error) {
	target, err := ParseJoinTarget(identifier)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	c, err := s.registry.GetOrCreate(ctx, tok)
	if err != nil {
		return domain.GroupInfo{}, err
	}

	var info domain.GroupInfo
	if target.IsInvite() {
		info, err = c.JoinInvite(ctx, target.InviteHash)
	} else {
		info, err = c.JoinPublic(ctx, target.Username)
	}
	if err != nil {
		return domain.GroupInfo{}, remoteError(ctx, s.registry.metrics, err)
	}
	return info, nil
}
