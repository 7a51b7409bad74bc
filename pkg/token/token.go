package token

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/yndnr/tokgate-go/pkg/crypto/adaptive"
)

// ErrInvalidToken indicates a token without a separator or with an
// undecodable credential part. It wraps ErrDecoding when decoding failed.
var ErrInvalidToken = errors.New("token: invalid session token")

const (
	separator    = ":"
	sealedPrefix = "s1."
	sealPurpose  = "tokgate credentials v1"
)

// sealAAD binds sealed blobs to this format version.
var sealAAD = []byte("tokgate/credentials/v1")

// Parts is a decoded token.
type Parts struct {
	Session string
	APIID   uint64
	APIHash string
	Sealed  bool
}

// EncodeSessionWithCredentials builds a legacy token.
func EncodeSessionWithCredentials(session string, apiID uint64, apiHash string) (string, error) {
	creds, err := EncryptCredentials(apiID, apiHash)
	if err != nil {
		return "", err
	}
	return session + separator + creds, nil
}

// DecodeSessionWithCredentials splits a legacy token on its first colon and
// decodes the credentials.
func DecodeSessionWithCredentials(tok string) (string, uint64, string, error) {
	session, creds, ok := strings.Cut(tok, separator)
	if !ok {
		return "", 0, "", ErrInvalidToken
	}
	apiID, apiHash, err := DecryptCredentials(creds)
	if err != nil {
		return "", 0, "", errors.Join(ErrInvalidToken, err)
	}
	return session, apiID, apiHash, nil
}

// Codec encodes and decodes tokens. A Codec without a key issues legacy
// tokens. A Codec with a key issues sealed tokens and accepts both formats.
type Codec struct {
	sealer *adaptive.Cipher
}

// NewCodec creates a codec. An empty secret selects the legacy format.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return &Codec{}, nil
	}
	key, err := adaptive.DeriveKey(secret, sealPurpose)
	if err != nil {
		return nil, err
	}
	c, err := adaptive.NewXChaCha20(key)
	if err != nil {
		return nil, err
	}
	return &Codec{sealer: c}, nil
}

// Sealed reports whether the codec issues sealed tokens.
func (c *Codec) Sealed() bool {
	return c.sealer != nil
}

// Encode combines a resumable session and API credentials into a token.
func (c *Codec) Encode(session string, apiID uint64, apiHash string) (string, error) {
	if c.sealer == nil {
		return EncodeSessionWithCredentials(session, apiID, apiHash)
	}
	plain, err := packCredentials(apiID, apiHash)
	if err != nil {
		return "", err
	}
	sealed, err := c.sealer.Seal(plain, sealAAD)
	if err != nil {
		return "", errors.Join(ErrEncoding, err)
	}
	return session + separator + sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode splits a token back into its parts.
func (c *Codec) Decode(tok string) (Parts, error) {
	session, creds, ok := strings.Cut(tok, separator)
	if !ok {
		return Parts{}, ErrInvalidToken
	}

	if !strings.HasPrefix(creds, sealedPrefix) {
		apiID, apiHash, err := DecryptCredentials(creds)
		if err != nil {
			return Parts{}, errors.Join(ErrInvalidToken, err)
		}
		return Parts{Session: session, APIID: apiID, APIHash: apiHash}, nil
	}

	if c.sealer == nil {
		return Parts{}, errors.Join(ErrInvalidToken, errors.New("token: sealed token but no credential key configured"))
	}
	raw, err := base64.RawURLEncoding.DecodeString(creds[len(sealedPrefix):])
	if err != nil {
		return Parts{}, errors.Join(ErrInvalidToken, ErrDecoding, err)
	}
	plain, err := c.sealer.Open(raw, sealAAD)
	if err != nil {
		return Parts{}, errors.Join(ErrInvalidToken, ErrDecoding, err)
	}
	apiID, apiHash, err := unpackCredentials(plain)
	if err != nil {
		return Parts{}, errors.Join(ErrInvalidToken, err)
	}
	return Parts{Session: session, APIID: apiID, APIHash: apiHash, Sealed: true}, nil
}

// IsSealed reports whether tok carries a sealed credential part. It does not
// validate the token.
func IsSealed(tok string) bool {
	_, creds, ok := strings.Cut(tok, separator)
	return ok && strings.HasPrefix(creds, sealedPrefix)
}
