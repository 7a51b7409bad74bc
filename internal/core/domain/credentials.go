package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxAPIHashLength is the longest API hash a session token can carry.
const MaxAPIHashLength = 255

// APICredentials identifies the caller's application on the remote service.
// They are issued once by the remote developer console and travel inside the
// session token afterwards.
type APICredentials struct {
	ID   uint64 `json:"api_id"`
	Hash string `json:"api_hash"`
}

// Validate checks the credentials can be packed into a token.
func (c APICredentials) Validate() error {
	if c.ID == 0 {
		return ErrInvalidArgument.WithDetails("api_id is required")
	}
	if strings.TrimSpace(c.Hash) == "" {
		return ErrInvalidArgument.WithDetails("api_hash is required")
	}
	if len(c.Hash) > MaxAPIHashLength || !utf8.ValidString(c.Hash) {
		return ErrEncoding.WithDetails("api_hash must be at most 255 bytes of UTF-8")
	}
	return nil
}
