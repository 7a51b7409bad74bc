package mtproto

import (
	"context"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
)

// SendCode requests a login code for phone. The code hash is kept on the
// client for SignIn.
func (c *Client) SendCode(ctx context.Context, phone string) (err error) {
	ctx, span := c.span(ctx, "SendCode")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return err
	}
	sent, err := c.tg.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return mapError(err)
	}
	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return domain.ErrProtocol.WithDetails("unexpected sent code response")
	}

	c.mu.Lock()
	c.phone, c.codeHash = phone, code.PhoneCodeHash
	c.mu.Unlock()
	return nil
}

// SignIn completes login with the received code. It returns
// domain.ErrPasswordRequired when two-step verification is enabled.
func (c *Client) SignIn(ctx context.Context, code string) (err error) {
	ctx, span := c.span(ctx, "SignIn")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return err
	}
	c.mu.Lock()
	phone, hash := c.phone, c.codeHash
	c.mu.Unlock()
	if hash == "" {
		return domain.ErrUnauthorized.WithDetails("no login code was requested")
	}

	if _, err := c.tg.Auth().SignIn(ctx, phone, code, hash); err != nil {
		return mapError(err)
	}
	return nil
}

// SignInPassword completes two-step verification.
func (c *Client) SignInPassword(ctx context.Context, password string) (err error) {
	ctx, span := c.span(ctx, "SignInPassword")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return err
	}
	if _, err := c.tg.Auth().Password(ctx, password); err != nil {
		return mapError(err)
	}
	return nil
}

// LogOut terminates the remote session.
func (c *Client) LogOut(ctx context.Context) (err error) {
	ctx, span := c.span(ctx, "LogOut")
	defer func() { tracer.EndSpan(span, err) }()

	if err := c.usable(); err != nil {
		return err
	}
	if _, err := c.api.AuthLogOut(ctx); err != nil {
		return mapError(err)
	}
	return nil
}
