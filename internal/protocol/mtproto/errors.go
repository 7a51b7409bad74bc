package mtproto

import (
	"context"
	"errors"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// rpcErrors maps RPC error types onto domain errors.
var rpcErrors = map[string]*domain.DomainError{
	"PHONE_CODE_INVALID": domain.ErrCodeInvalid,
	"PHONE_CODE_EMPTY":   domain.ErrCodeInvalid,
	"PHONE_CODE_EXPIRED": domain.ErrCodeInvalid,

	"PASSWORD_HASH_INVALID":   domain.ErrPasswordInvalid,
	"SESSION_PASSWORD_NEEDED": domain.ErrPasswordRequired,

	"AUTH_KEY_UNREGISTERED": domain.ErrUnauthorized,
	"AUTH_KEY_INVALID":      domain.ErrUnauthorized,
	"SESSION_REVOKED":       domain.ErrUnauthorized,
	"SESSION_EXPIRED":       domain.ErrUnauthorized,
	"USER_DEACTIVATED":      domain.ErrUnauthorized,
	"USER_DEACTIVATED_BAN":  domain.ErrUnauthorized,

	"PEER_ID_INVALID":       domain.ErrChatNotFound,
	"CHAT_ID_INVALID":       domain.ErrChatNotFound,
	"CHANNEL_INVALID":       domain.ErrChatNotFound,
	"CHANNEL_PRIVATE":       domain.ErrChatNotFound,
	"USERNAME_INVALID":      domain.ErrChatNotFound,
	"USERNAME_NOT_OCCUPIED": domain.ErrChatNotFound,
	"PHONE_NOT_OCCUPIED":    domain.ErrChatNotFound,

	"MESSAGE_ID_INVALID":       domain.ErrMessageIDInvalid,
	"MESSAGE_DELETE_FORBIDDEN": domain.ErrDeleteForbidden,
	"MESSAGE_AUTHOR_REQUIRED":  domain.ErrAuthorRequired,
	"MESSAGE_NOT_MODIFIED":     domain.ErrMessageNotModified,
	"MESSAGE_EMPTY":            domain.ErrMessageEmpty,
	"MESSAGE_TOO_LONG":         domain.ErrMessageTooLong,

	"INVITE_HASH_EMPTY":        domain.ErrInviteHashEmpty,
	"INVITE_HASH_EXPIRED":      domain.ErrInviteHashExpired,
	"INVITE_HASH_INVALID":      domain.ErrInviteHashInvalid,
	"USER_ALREADY_PARTICIPANT": domain.ErrAlreadyParticipant,
}

// mapError converts a gotd error into the domain taxonomy. Domain errors
// and context errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsDomainError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return domain.RateLimited(d)
	}
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return domain.ErrPasswordRequired
	}
	if errors.Is(err, auth.ErrPasswordInvalid) {
		return domain.ErrPasswordInvalid
	}

	if rpcErr, ok := tgerr.As(err); ok {
		if de, ok := rpcErrors[rpcErr.Type]; ok {
			return de.WithCause(err)
		}
		if rpcErr.Code == 401 {
			return domain.ErrUnauthorized.WithCause(err)
		}
		return domain.ErrProtocol.WithDetails(rpcErr.Type).WithCause(err)
	}
	return domain.ErrProtocol.Wrap(err)
}
