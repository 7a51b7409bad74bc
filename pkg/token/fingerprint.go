package token

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Fingerprint returns a short stable identifier for a token, suitable for
// log correlation. It is not a secret-preserving hash: it only avoids putting
// the token itself into logs.
func Fingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	return fmt.Sprintf("%08x", murmur3.Sum32([]byte(tok)))
}
