package adaptive

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrEmptySecret indicates DeriveKey was called without input key material.
var ErrEmptySecret = errors.New("adaptive: empty secret")

// DeriveKey derives a KeySize key from secret using HKDF-SHA256 with purpose
// as the info label. The derivation is deterministic so every replica sharing
// the secret derives the same key.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
