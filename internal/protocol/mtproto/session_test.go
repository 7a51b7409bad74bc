package mtproto

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gotd/td/session"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	st := &memoryStorage{}

	if _, err := st.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("LoadSession() on empty storage error = %v, want session.ErrNotFound", err)
	}

	data := []byte(`{"Version":1,"Data":{"DC":2}}`)
	if err := st.StoreSession(ctx, data); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}
	data[0] = 'X'

	got, err := st.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if got[0] != '{' {
		t.Error("storage aliased the caller's buffer")
	}
}

func TestSessionString_RoundTrip(t *testing.T) {
	data := []byte(`{"Version":1,"Data":{"DC":2,"Addr":"149.154.167.50:443"}}`)
	s := encodeSession(data)
	if strings.Contains(s, ":") {
		t.Fatalf("encodeSession() = %q contains ':'", s)
	}

	st, err := newStorage(context.Background(), s)
	if err != nil {
		t.Fatalf("newStorage() error = %v", err)
	}
	if !bytes.Equal(st.bytes(), data) {
		t.Errorf("newStorage() data = %q, want %q", st.bytes(), data)
	}
}

func TestNewStorage(t *testing.T) {
	st, err := newStorage(context.Background(), "  ")
	if err != nil {
		t.Fatalf("newStorage(empty) error = %v", err)
	}
	if len(st.bytes()) != 0 {
		t.Error("empty session string produced data")
	}

	for _, bad := range []string{"!!not-base64!!", "1not-a-telethon-session"} {
		if _, err := newStorage(context.Background(), bad); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("newStorage(%q) error = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestClient_SaveSessionBeforeConnect(t *testing.T) {
	c, err := NewFactory(Device{}, nil).NewClient("", domain.APICredentials{ID: 1, Hash: "h"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := c.SaveSession(context.Background()); !errors.Is(err, domain.ErrInternal) {
		t.Errorf("SaveSession() error = %v, want ErrInternal", err)
	}
	if err := c.Disconnect(context.Background()); err != nil {
		t.Errorf("Disconnect() before Connect error = %v", err)
	}
	if err := c.Connect(context.Background()); !errors.Is(err, domain.ErrClientClosed) {
		t.Errorf("Connect() after Disconnect error = %v, want ErrClientClosed", err)
	}
}
