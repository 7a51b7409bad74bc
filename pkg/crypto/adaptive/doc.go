// Package adaptive provides the authenticated ciphers used to seal gateway
// credentials.
//
// Supported Algorithms:
//
//   - XChaCha20-Poly1305: used for sealed tokens; its 24-byte random nonce
//     makes nonce reuse across gateway replicas negligible
//   - AES-256-GCM: available where hardware AES is preferred
//
// Keys are never used raw. DeriveKey stretches an operator secret with
// HKDF-SHA256 and a purpose label, so the same secret can key unrelated uses
// without sharing key material.
//
// Usage:
//
//	key, err := adaptive.DeriveKey(secret, "tokgate credentials v1")
//	c, err := adaptive.NewXChaCha20(key)
//	sealed, err := c.Seal(plaintext, aad)
//	plaintext, err := c.Open(sealed, aad)
package adaptive
