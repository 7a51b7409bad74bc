// Package token implements the opaque session token handed to gateway callers.
//
// A token carries everything needed to rebuild a protocol connection after a
// gateway restart: the resumable session produced by the protocol library and
// the caller's API credentials.
//
// Token Format:
//
//	<session>:<credentials>
//
// The session part is opaque and may itself contain colons; Decode splits on
// the first colon only. The credentials part is one of:
//
//   - Legacy: padded base64url of (BE u64 api_id || u8 len || api_hash) XORed
//     with a fixed 32-byte key, cycling the key.
//   - Sealed: "s1." followed by raw base64url of nonce || XChaCha20-Poly1305
//     ciphertext over the same plaintext layout.
//
// Security:
//
// The legacy format is obfuscation, not encryption. The key is compiled into
// the binary and anyone holding it can read and forge credential blobs.
// It exists for compatibility with tokens already issued to callers. Configure
// a credential key (Codec with a key) to issue sealed tokens; sealed codecs
// still accept legacy tokens so existing callers keep working.
//
// Never log a token. Use Fingerprint to correlate log lines instead.
package token
