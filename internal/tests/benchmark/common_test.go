package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/core/service"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/pkg/token"
)

// ConnectionCounts are the registry sizes benchmarked.
var ConnectionCounts = []int{100, 1000, 10000}

const (
	benchAPIID   = 12345
	benchAPIHash = "0123456789abcdef0123456789abcdef"
	benchSecret  = "benchmark-credential-key-0123456789"
)

// stubClient is an always-authorized client with no transport. Methods
// outside the connection lifecycle are not used and panic.
type stubClient struct {
	service.ProtocolClient
	session string
}

func (s *stubClient) Connect(context.Context) error             { return nil }
func (s *stubClient) IsAuthorized(context.Context) (bool, error) { return true, nil }
func (s *stubClient) Disconnect(context.Context) error          { return nil }
func (s *stubClient) Closed() bool                              { return false }

func (s *stubClient) SaveSession(context.Context) (string, error) { return s.session, nil }

func stubFactory() service.ClientFactory {
	return service.ClientFactoryFunc(func(session string, _ domain.APICredentials) (service.ProtocolClient, error) {
		return &stubClient{session: session}, nil
	})
}

func newCodec(b *testing.B, sealed bool) *token.Codec {
	b.Helper()
	var secret []byte
	if sealed {
		secret = []byte(benchSecret)
	}
	c, err := token.NewCodec(secret)
	if err != nil {
		b.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

// prefillRegistry caches count connections and returns their tokens.
func prefillRegistry(b *testing.B, r *service.Registry, count int) []string {
	b.Helper()
	ctx := context.Background()
	toks := make([]string, count)
	for i := range toks {
		tok, err := r.Codec().Encode(fmt.Sprintf("session%06d", i), benchAPIID, benchAPIHash)
		if err != nil {
			b.Fatalf("Encode() error = %v", err)
		}
		if _, err := r.GetOrCreate(ctx, tok); err != nil {
			b.Fatalf("GetOrCreate() error = %v", err)
		}
		toks[i] = tok
	}
	return toks
}

func newRegistry(b *testing.B, sealed bool) *service.Registry {
	b.Helper()
	return service.NewRegistry(newCodec(b, sealed), stubFactory(), service.WithRegistryLogger(logger.NewNop()))
}
