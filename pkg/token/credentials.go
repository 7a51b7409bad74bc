package token

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// MaxSecretLen is the longest API secret the one-byte length prefix can describe.
const MaxSecretLen = 255

// headerLen is the fixed prefix: 8 bytes of api_id and 1 byte of secret length.
const headerLen = 9

var (
	// ErrEncoding indicates the credentials cannot be packed.
	ErrEncoding = errors.New("token: credentials cannot be encoded")

	// ErrDecoding indicates a credential blob is malformed, truncated or tampered with.
	ErrDecoding = errors.New("token: credentials cannot be decoded")
)

// legacyKey is the process-wide XOR key of the legacy credential format.
var legacyKey = mustDecodeKey("v1KvK4AGqhWQUm9L87Dh7PzPKl2EQeQA3J0H2InPMUo=")

func mustDecodeKey(s string) []byte {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(key) != 32 {
		panic("token: invalid legacy key")
	}
	return key
}

// EncryptCredentials packs and obfuscates an API id and secret using the
// legacy format. The result is padded base64url and never contains ':'.
func EncryptCredentials(apiID uint64, secret string) (string, error) {
	plain, err := packCredentials(apiID, secret)
	if err != nil {
		return "", err
	}
	xorKey(plain)
	return base64.URLEncoding.EncodeToString(plain), nil
}

// DecryptCredentials reverses EncryptCredentials.
func DecryptCredentials(blob string) (uint64, string, error) {
	raw, err := base64.URLEncoding.DecodeString(blob)
	if err != nil {
		return 0, "", errors.Join(ErrDecoding, err)
	}
	xorKey(raw)
	return unpackCredentials(raw)
}

// packCredentials lays out api_id and secret as BE u64 || u8 len || secret.
func packCredentials(apiID uint64, secret string) ([]byte, error) {
	if len(secret) > MaxSecretLen || !utf8.ValidString(secret) {
		return nil, ErrEncoding
	}
	buf := make([]byte, headerLen+len(secret))
	binary.BigEndian.PutUint64(buf, apiID)
	buf[8] = byte(len(secret))
	copy(buf[headerLen:], secret)
	return buf, nil
}

func unpackCredentials(buf []byte) (uint64, string, error) {
	if len(buf) < headerLen {
		return 0, "", ErrDecoding
	}
	n := int(buf[8])
	if len(buf) < headerLen+n {
		return 0, "", ErrDecoding
	}
	secret := buf[headerLen : headerLen+n]
	if !utf8.Valid(secret) {
		return 0, "", ErrDecoding
	}
	return binary.BigEndian.Uint64(buf), string(secret), nil
}

// xorKey XORs buf in place with the legacy key, cycling the key.
func xorKey(buf []byte) {
	for i := range buf {
		buf[i] ^= legacyKey[i%len(legacyKey)]
	}
}
