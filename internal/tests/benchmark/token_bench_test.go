package benchmark

import (
	"testing"

	"github.com/yndnr/tokgate-go/pkg/token"
)

func BenchmarkCodecEncode(b *testing.B) {
	for _, sealed := range []bool{false, true} {
		b.Run(formatName(sealed), func(b *testing.B) {
			c := newCodec(b, sealed)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Encode("1BVtsOKABu0yDLYd", benchAPIID, benchAPIHash); err != nil {
					b.Fatalf("Encode() error = %v", err)
				}
			}
		})
	}
}

func BenchmarkCodecDecode(b *testing.B) {
	for _, sealed := range []bool{false, true} {
		b.Run(formatName(sealed), func(b *testing.B) {
			c := newCodec(b, sealed)
			tok, err := c.Encode("1BVtsOKABu0yDLYd", benchAPIID, benchAPIHash)
			if err != nil {
				b.Fatalf("Encode() error = %v", err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Decode(tok); err != nil {
					b.Fatalf("Decode() error = %v", err)
				}
			}
		})
	}
}

// BenchmarkCodecDecode_Invalid measures rejection of garbage tokens, which
// every unauthenticated request can trigger.
func BenchmarkCodecDecode_Invalid(b *testing.B) {
	c := newCodec(b, true)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Decode("session:s1.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"); err == nil {
			b.Fatal("Decode() accepted a forged token")
		}
	}
}

func BenchmarkFingerprint(b *testing.B) {
	tok, err := token.EncodeSessionWithCredentials("1BVtsOKABu0yDLYd", benchAPIID, benchAPIHash)
	if err != nil {
		b.Fatalf("Encode() error = %v", err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		token.Fingerprint(tok)
	}
}

func formatName(sealed bool) string {
	if sealed {
		return "sealed"
	}
	return "legacy"
}
