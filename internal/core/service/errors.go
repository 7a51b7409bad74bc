package service

import (
	"context"
	"errors"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/internal/telemetry/metric"
	"github.com/yndnr/tokgate-go/pkg/token"
)

// asDomainError normalizes err for callers. Domain errors pass through,
// context errors become ErrTimeout and anything else is wrapped in fallback
// with its message kept in Details.
func asDomainError(err error, fallback *domain.DomainError) error {
	if err == nil {
		return nil
	}
	if de, ok := domain.AsDomainError(err); ok {
		return de
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout.WithCause(err)
	}
	return fallback.Wrap(err)
}

// remoteError normalizes an error returned by a protocol call and records
// flood waits.
func remoteError(ctx context.Context, m *metric.Registry, err error) error {
	derr := asDomainError(err, domain.ErrProtocol)
	if de, ok := domain.AsDomainError(derr); ok && de.Code == domain.ErrRateLimited.Code {
		m.FloodWait(de.RetryAfter)
		logger.L(ctx).Warn("remote flood wait", "wait_seconds", de.WaitSeconds())
	}
	return derr
}

// tokenError maps codec errors onto the domain taxonomy. A decode failure
// surfaces as ErrInvalidToken with ErrDecoding in its cause chain.
func tokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrEncoding):
		return domain.ErrEncoding.WithCause(err)
	case errors.Is(err, token.ErrDecoding):
		return domain.ErrInvalidToken.WithCause(domain.ErrDecoding.WithCause(err))
	default:
		return domain.ErrInvalidToken.WithCause(err)
	}
}

// decodeToken decodes tok into its resumable session and credentials.
func decodeToken(codec *token.Codec, tok string) (string, domain.APICredentials, error) {
	if tok == "" {
		return "", domain.APICredentials{}, domain.ErrInvalidToken.WithDetails("missing session string")
	}
	parts, err := codec.Decode(tok)
	if err != nil {
		return "", domain.APICredentials{}, tokenError(err)
	}
	return parts.Session, domain.APICredentials{ID: parts.APIID, Hash: parts.APIHash}, nil
}

// encodeToken builds a token from a saved session.
func encodeToken(codec *token.Codec, session string, creds domain.APICredentials) (string, error) {
	tok, err := codec.Encode(session, creds.ID, creds.Hash)
	if err != nil {
		return "", tokenError(err)
	}
	return tok, nil
}
