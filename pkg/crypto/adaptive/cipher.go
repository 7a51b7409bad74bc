package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the key length accepted by every cipher in this package.
const KeySize = 32

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM    CipherType = "aes-256-gcm"
	CipherXChaCha20 CipherType = "xchacha20-poly1305"
)

var (
	// ErrKeySize indicates a key of the wrong length.
	ErrKeySize = errors.New("adaptive: key must be 32 bytes")

	// ErrShortCiphertext indicates input shorter than nonce plus tag.
	ErrShortCiphertext = errors.New("adaptive: ciphertext too short")
)

// Cipher is an AEAD that prepends a random nonce to every sealed message.
// It is safe for concurrent use.
type Cipher struct {
	typ  CipherType
	aead cipher.AEAD
}

// New creates a cipher of the given type.
func New(key []byte, typ CipherType) (*Cipher, error) {
	switch typ {
	case CipherXChaCha20:
		return NewXChaCha20(key)
	case CipherAESGCM:
		return NewAESGCM(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", typ)
	}
}

// NewXChaCha20 creates an XChaCha20-Poly1305 cipher.
func NewXChaCha20(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{typ: CipherXChaCha20, aead: aead}, nil
}

// NewAESGCM creates an AES-256-GCM cipher.
func NewAESGCM(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{typ: CipherAESGCM, aead: aead}, nil
}

// Type returns the cipher type.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Overhead returns the bytes Seal adds to a plaintext (nonce plus tag).
func (c *Cipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

// Seal encrypts and authenticates plaintext. The output is nonce || ciphertext.
func (c *Cipher) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open authenticates and decrypts a message produced by Seal.
func (c *Cipher) Open(sealed, additionalData []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < ns+c.aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	return c.aead.Open(nil, sealed[:ns], sealed[ns:], additionalData)
}
