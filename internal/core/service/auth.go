package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/pkg/cmap"
	"github.com/yndnr/tokgate-go/pkg/token"
)

// DefaultPendingLoginTTL is how long a login may sit between SendCode and
// the last verification step before its connection is dropped.
const DefaultPendingLoginTTL = 10 * time.Minute

// AuthService drives the phone login flow. Login clients are registered
// under their pre-auth token and can only be found again by Lookup: an
// unauthorized session cannot be rebuilt from its token.
type AuthService struct {
	registry *Registry
	factory  ClientFactory

	// pending maps pre-auth tokens to their expiry.
	pending    *cmap.Map[time.Time]
	pendingTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates an AuthService. A non-positive pendingTTL selects
// DefaultPendingLoginTTL.
func NewAuthService(registry *Registry, factory ClientFactory, pendingTTL time.Duration) *AuthService {
	if pendingTTL <= 0 {
		pendingTTL = DefaultPendingLoginTTL
	}
	return &AuthService{
		registry:   registry,
		factory:    factory,
		pending:    cmap.New[time.Time](),
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// SendCode starts a login for phone with a fresh session and returns the
// pre-auth token the caller must present to VerifyCode.
func (s *AuthService) SendCode(ctx context.Context, phone string, creds domain.APICredentials) (domain.AuthResult, error) {
	// 1. Validate
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.AuthResult{}, domain.ErrInvalidArgument.WithDetails("phone is required")
	}
	if err := creds.Validate(); err != nil {
		return domain.AuthResult{}, err
	}

	// 2. Connect a client with an empty session
	c, err := s.factory.NewClient("", creds)
	if err != nil {
		return domain.AuthResult{}, asDomainError(err, domain.ErrInternal)
	}
	if err := c.Connect(ctx); err != nil {
		s.registry.discard(c)
		return domain.AuthResult{}, remoteError(ctx, s.registry.metrics, err)
	}

	// 3. Request the code
	if err := c.SendCode(ctx, phone); err != nil {
		s.registry.discard(c)
		return domain.AuthResult{}, remoteError(ctx, s.registry.metrics, err)
	}

	// 4. Issue the pre-auth token
	session, err := c.SaveSession(ctx)
	if err != nil {
		s.registry.discard(c)
		return domain.AuthResult{}, asDomainError(err, domain.ErrInternal)
	}
	tok, err := encodeToken(s.registry.codec, session, creds)
	if err != nil {
		s.registry.discard(c)
		return domain.AuthResult{}, err
	}

	s.registry.Replace("", tok, c)
	s.pending.Set(tok, s.now().Add(s.pendingTTL))
	logger.L(ctx).Info("login code sent", "token_fp", token.Fingerprint(tok), "api_id", creds.ID)

	return domain.AuthResult{
		Message:       "Code sent successfully",
		NextStep:      domain.StepVerifyCode,
		SessionString: tok,
	}, nil
}

// VerifyCode completes login with the received code. With two-step
// verification enabled it returns StepVerifyPassword and the same token.
func (s *AuthService) VerifyCode(ctx context.Context, tok, code string) (domain.AuthResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.AuthResult{}, domain.ErrInvalidArgument.WithDetails("code is required")
	}
	c, err := s.loginClient(tok)
	if err != nil {
		return domain.AuthResult{}, err
	}

	if err := c.SignIn(ctx, code); err != nil {
		if errors.Is(err, domain.ErrPasswordRequired) {
			return domain.AuthResult{
				Message:       "2FA password required",
				NextStep:      domain.StepVerifyPassword,
				SessionString: tok,
			}, nil
		}
		return domain.AuthResult{}, remoteError(ctx, s.registry.metrics, err)
	}
	return s.complete(ctx, tok, c)
}

// VerifyPassword completes two-step verification.
func (s *AuthService) VerifyPassword(ctx context.Context, tok, password string) (domain.AuthResult, error) {
	if password == "" {
		return domain.AuthResult{}, domain.ErrInvalidArgument.WithDetails("password is required")
	}
	c, err := s.loginClient(tok)
	if err != nil {
		return domain.AuthResult{}, err
	}

	if err := c.SignInPassword(ctx, password); err != nil {
		return domain.AuthResult{}, remoteError(ctx, s.registry.metrics, err)
	}
	return s.complete(ctx, tok, c)
}

// Logout terminates the remote session and drops its connection. A token
// that is no longer authorized counts as logged out.
func (s *AuthService) Logout(ctx context.Context, tok string) error {
	c, ok := s.registry.Lookup(tok)
	if !ok || c.Closed() {
		var err error
		c, err = s.registry.GetOrCreate(ctx, tok)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return nil
			}
			return err
		}
	}

	logoutErr := c.LogOut(ctx)
	s.pending.Delete(tok)
	if err := s.registry.RemoveAndDisconnect(ctx, tok); err != nil {
		logger.L(ctx).Warn("disconnect after logout failed", "token_fp", token.Fingerprint(tok), "error", err)
	}
	if logoutErr != nil && !errors.Is(logoutErr, domain.ErrUnauthorized) {
		return remoteError(ctx, s.registry.metrics, logoutErr)
	}
	logger.L(ctx).Info("logged out", "token_fp", token.Fingerprint(tok))
	return nil
}

// SweepPending drops login connections whose verification window passed.
// It returns the number dropped.
func (s *AuthService) SweepPending(ctx context.Context) int {
	now := s.now()
	dropped := 0
	for _, tok := range s.pending.Keys() {
		expiry, ok := s.pending.Get(tok)
		if !ok || now.Before(expiry) {
			continue
		}
		s.pending.Delete(tok)
		if c, ok := s.registry.Lookup(tok); ok {
			// Only unauthorized clients are dropped; complete() rekeys
			// authorized ones away from the pending token.
			if authorized, err := c.IsAuthorized(ctx); err == nil && authorized {
				continue
			}
		}
		if err := s.registry.RemoveAndDisconnect(ctx, tok); err != nil {
			logger.L(ctx).Warn("dropping expired login failed", "token_fp", token.Fingerprint(tok), "error", err)
			continue
		}
		dropped++
	}
	return dropped
}

// RunSweeper calls SweepPending every interval until ctx is done.
func (s *AuthService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.SweepPending(ctx); n > 0 {
				logger.L(ctx).Info("expired logins dropped", "count", n)
			}
		}
	}
}

// loginClient finds the client of an in-progress login.
func (s *AuthService) loginClient(tok string) (ProtocolClient, error) {
	if _, _, err := decodeToken(s.registry.codec, tok); err != nil {
		return nil, err
	}
	c, ok := s.registry.Lookup(tok)
	if !ok {
		return nil, domain.ErrUnauthorized.WithDetails("invalid session")
	}
	return c, nil
}

// complete re-encodes the now authorized session and rekeys its client.
func (s *AuthService) complete(ctx context.Context, oldTok string, c ProtocolClient) (domain.AuthResult, error) {
	_, creds, err := decodeToken(s.registry.codec, oldTok)
	if err != nil {
		return domain.AuthResult{}, err
	}
	session, err := c.SaveSession(ctx)
	if err != nil {
		return domain.AuthResult{}, asDomainError(err, domain.ErrInternal)
	}
	newTok, err := encodeToken(s.registry.codec, session, creds)
	if err != nil {
		return domain.AuthResult{}, err
	}

	s.registry.Replace(oldTok, newTok, c)
	s.pending.Delete(oldTok)
	logger.L(ctx).Info("login completed", "token_fp", token.Fingerprint(newTok), "api_id", creds.ID)

	return domain.AuthResult{
		Message:       "Successfully authenticated",
		NextStep:      domain.StepCompleted,
		SessionString: newTok,
	}, nil
}
