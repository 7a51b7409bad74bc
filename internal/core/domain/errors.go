package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a gateway error with a structured error code.
// The code suffix determines the HTTP status: TG-CHAT-4040 maps to 404.
type DomainError struct {
	Code    string // Error code (e.g., "TG-CHAT-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)

	// RetryAfter is set on rate limit errors.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches by Code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	return &c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := e.clone()
	c.Details = details
	return c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// Wrap wraps cause and copies its message into Details, so the underlying
// failure reaches the caller for diagnostics.
func (e *DomainError) Wrap(cause error) *DomainError {
	c := e.WithCause(cause)
	if cause != nil {
		c.Details = cause.Error()
	}
	return c
}

// WaitSeconds returns RetryAfter rounded up to whole seconds.
func (e *DomainError) WaitSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int((e.RetryAfter + time.Second - 1) / time.Second)
}

// RateLimited returns a rate limit error carrying the remote wait duration.
func RateLimited(wait time.Duration) *DomainError {
	c := ErrRateLimited.clone()
	c.RetryAfter = wait
	c.Details = fmt.Sprintf("please wait %d seconds before making another request", c.WaitSeconds())
	return c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// AsDomainError returns the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

// ============================================================================
// Session token and credential errors (TOKEN, CRED)
// ============================================================================

var (
	// ErrInvalidToken indicates a malformed or undecodable session token.
	ErrInvalidToken = NewDomainError("TG-TOKEN-4010", "invalid session")

	// ErrEncoding indicates credentials that cannot be packed into a token.
	ErrEncoding = NewDomainError("TG-CRED-4001", "credentials cannot be encoded")

	// ErrDecoding indicates a credential blob that is malformed or tampered with.
	ErrDecoding = NewDomainError("TG-CRED-4002", "credentials cannot be decoded")
)

// ============================================================================
// Authentication errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates the session decodes but is not authorized.
	ErrUnauthorized = NewDomainError("TG-AUTH-4011", "authentication required")

	// ErrPasswordRequired indicates the account has two-step verification enabled.
	ErrPasswordRequired = NewDomainError("TG-AUTH-4012", "2FA password required")

	// ErrCodeInvalid indicates a wrong or expired login code.
	ErrCodeInvalid = NewDomainError("TG-AUTH-4001", "invalid or expired verification code")

	// ErrPasswordInvalid indicates a wrong 2FA password.
	ErrPasswordInvalid = NewDomainError("TG-AUTH-4002", "invalid 2FA password")
)

// ============================================================================
// Chat and message errors (CHAT, MSG)
// ============================================================================

var (
	// ErrChatNotFound indicates the chat identifier could not be resolved.
	ErrChatNotFound = NewDomainError("TG-CHAT-4040", "chat not found")

	// ErrMessageNotFound indicates the message does not exist in the chat.
	ErrMessageNotFound = NewDomainError("TG-MSG-4041", "message not found")

	// ErrNoMedia indicates the message carries no downloadable media.
	ErrNoMedia = NewDomainError("TG-MSG-4003", "message has no media content")

	// ErrMessageEmpty indicates an empty message text or caption.
	ErrMessageEmpty = NewDomainError("TG-MSG-4004", "message text cannot be empty")

	// ErrMessageTooLong indicates a message text or caption over the remote limit.
	ErrMessageTooLong = NewDomainError("TG-MSG-4005", "message text is too long")

	// ErrMessageIDInvalid indicates an unknown or malformed message id.
	ErrMessageIDInvalid = NewDomainError("TG-MSG-4006", "invalid message ID")

	// ErrMessageNotModified indicates an edit that changes nothing.
	ErrMessageNotModified = NewDomainError("TG-MSG-4007", "message content is not modified")

	// ErrNothingDeleted indicates none of the requested messages could be deleted.
	ErrNothingDeleted = NewDomainError("TG-MSG-4008", "none of the specified messages could be deleted")

	// ErrDeleteForbidden indicates the caller may not delete the message.
	ErrDeleteForbidden = NewDomainError("TG-MSG-4030", "message cannot be deleted")

	// ErrAuthorRequired indicates only the message author may perform the action.
	ErrAuthorRequired = NewDomainError("TG-MSG-4031", "you must be the author of the message to edit it")
)

// ============================================================================
// Group errors (GROUP)
// ============================================================================

var (
	// ErrInviteHashEmpty indicates an invite link without a hash.
	ErrInviteHashEmpty = NewDomainError("TG-GROUP-4001", "invalid invitation link - hash is empty")

	// ErrInviteHashExpired indicates an expired invite link.
	ErrInviteHashExpired = NewDomainError("TG-GROUP-4002", "this invitation link has expired")

	// ErrInviteHashInvalid indicates an invite link the remote service rejects.
	ErrInviteHashInvalid = NewDomainError("TG-GROUP-4003", "invalid invitation link")

	// ErrAlreadyParticipant indicates the account is already a member.
	ErrAlreadyParticipant = NewDomainError("TG-GROUP-4090", "already a participant")
)

// ============================================================================
// Protocol and system errors (RATE, PROTO, ARG, SYS)
// ============================================================================

var (
	// ErrRateLimited indicates a remote flood-control wait. Use RateLimited to
	// attach the wait duration.
	ErrRateLimited = NewDomainError("TG-RATE-4290", "too many requests")

	// ErrTooManyRequests indicates the gateway's own per-client limit was hit.
	ErrTooManyRequests = NewDomainError("TG-RATE-4291", "too many requests")

	// ErrProtocol is a remote failure without a more specific code. The remote
	// message is kept in Details.
	ErrProtocol = NewDomainError("TG-PROTO-4000", "request failed")

	// ErrClientClosed indicates the connection was closed under the request,
	// typically by shutdown draining. The request can be retried.
	ErrClientClosed = NewDomainError("TG-PROTO-5020", "connection closed")

	// ErrInvalidArgument indicates an invalid request argument.
	ErrInvalidArgument = NewDomainError("TG-ARG-4000", "invalid argument")

	// ErrInternal indicates an internal gateway error.
	ErrInternal = NewDomainError("TG-SYS-5000", "internal server error")

	// ErrTimeout indicates the request deadline passed or the caller went away.
	ErrTimeout = NewDomainError("TG-SYS-5040", "request timed out")
)
