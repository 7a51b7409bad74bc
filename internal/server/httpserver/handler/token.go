package handler

import "context"

// SessionHeader carries the gateway token on every session route.
const SessionHeader = "X-Session-String"

type sessionKey struct{}

// WithSessionToken returns a context carrying the caller's token.
func WithSessionToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, sessionKey{}, tok)
}

// SessionToken returns the token stored by WithSessionToken.
func SessionToken(ctx context.Context) string {
	tok, _ := ctx.Value(sessionKey{}).(string)
	return tok
}
