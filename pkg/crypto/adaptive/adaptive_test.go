package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

var testKey = func() []byte {
	k := make([]byte, KeySize)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}()

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		typ     CipherType
		wantErr bool
	}{
		{"xchacha20", CipherXChaCha20, false},
		{"aes-gcm", CipherAESGCM, false},
		{"unknown", CipherType("rot13"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(testKey, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
			}
			if err == nil && c.Type() != tt.typ {
				t.Errorf("Type() = %q, want %q", c.Type(), tt.typ)
			}
		})
	}
}

func TestNew_KeySize(t *testing.T) {
	for _, n := range []int{0, 16, 24, 33} {
		if _, err := NewXChaCha20(make([]byte, n)); !errors.Is(err, ErrKeySize) {
			t.Errorf("NewXChaCha20(len=%d) error = %v, want ErrKeySize", n, err)
		}
		if _, err := NewAESGCM(make([]byte, n)); !errors.Is(err, ErrKeySize) {
			t.Errorf("NewAESGCM(len=%d) error = %v, want ErrKeySize", n, err)
		}
	}
}

func TestSealOpen(t *testing.T) {
	for _, typ := range []CipherType{CipherXChaCha20, CipherAESGCM} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := New(testKey, typ)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			plaintext := []byte("api credentials")
			aad := []byte("aad")

			sealed, err := c.Seal(plaintext, aad)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if len(sealed) != len(plaintext)+c.Overhead() {
				t.Errorf("len(sealed) = %d, want %d", len(sealed), len(plaintext)+c.Overhead())
			}

			got, err := c.Open(sealed, aad)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Open() = %q, want %q", got, plaintext)
			}

			if _, err := c.Open(sealed, []byte("other")); err == nil {
				t.Error("Open() with wrong aad should fail")
			}
		})
	}
}

func TestOpen_Tampered(t *testing.T) {
	c, _ := NewXChaCha20(testKey)
	sealed, err := c.Seal([]byte("payload"), nil)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	sealed[len(sealed)-1] ^= 0xFF
	if _, err := c.Open(sealed, nil); err == nil {
		t.Error("Open() of tampered ciphertext should fail")
	}
}

func TestOpen_TooShort(t *testing.T) {
	c, _ := NewXChaCha20(testKey)
	if _, err := c.Open(make([]byte, 10), nil); !errors.Is(err, ErrShortCiphertext) {
		t.Errorf("Open(short) error = %v, want ErrShortCiphertext", err)
	}
}

func TestSeal_Uniqueness(t *testing.T) {
	c, _ := NewXChaCha20(testKey)
	a, _ := c.Seal([]byte("same"), nil)
	b, _ := c.Seal([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("Seal() produced identical output for repeated input")
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey([]byte("operator secret"), "purpose-a")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if len(k1) != KeySize {
		t.Errorf("len(key) = %d, want %d", len(k1), KeySize)
	}

	k2, _ := DeriveKey([]byte("operator secret"), "purpose-a")
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveKey() is not deterministic")
	}

	k3, _ := DeriveKey([]byte("operator secret"), "purpose-b")
	if bytes.Equal(k1, k3) {
		t.Error("DeriveKey() should separate purposes")
	}

	if _, err := DeriveKey(nil, "purpose-a"); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("DeriveKey(nil) error = %v, want ErrEmptySecret", err)
	}
}
