package mtproto

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/gotd/td/session"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// telethonPrefix starts every Telethon string session.
const telethonPrefix = "1"

// memoryStorage is a session.Storage holding one session blob.
type memoryStorage struct {
	mu   sync.Mutex
	data []byte
}

var _ session.Storage = (*memoryStorage)(nil)

// LoadSession implements session.Storage.
func (s *memoryStorage) LoadSession(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// StoreSession implements session.Storage.
func (s *memoryStorage) StoreSession(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data[:0], data...)
	return nil
}

func (s *memoryStorage) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// newStorage loads a session string into memory. The empty string starts a
// fresh session. Telethon string sessions are imported; anything else must
// be a string produced by encodeSession.
func newStorage(ctx context.Context, s string) (*memoryStorage, error) {
	st := &memoryStorage{}
	s = strings.TrimSpace(s)
	if s == "" {
		return st, nil
	}

	if strings.HasPrefix(s, telethonPrefix) {
		data, err := session.TelethonSession(s)
		if err != nil {
			return nil, domain.ErrInvalidToken.WithDetails("malformed telethon session").WithCause(err)
		}
		loader := session.Loader{Storage: st}
		if err := loader.Save(ctx, data); err != nil {
			return nil, domain.ErrInternal.Wrap(err)
		}
		return st, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, domain.ErrInvalidToken.WithDetails("malformed session")
	}
	st.data = raw
	return st, nil
}

// encodeSession renders stored session state as a session string. The
// alphabet is base64url so the result never contains ':'.
func encodeSession(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
