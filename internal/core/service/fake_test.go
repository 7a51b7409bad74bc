package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/tokgate-go/internal/core/domain"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/pkg/token"
)

var testCreds = domain.APICredentials{ID: 12345, Hash: "0123456789abcdef0123456789abcdef"}

// fakeClient is an in-memory ProtocolClient.
type fakeClient struct {
	mu sync.Mutex

	session      string
	authorized   bool
	connectDelay time.Duration
	connectGate  chan struct{}
	connectErr   error
	disconnErr   error

	connects    atomic.Int32
	disconnects atomic.Int32
	closed      atomic.Bool

	sendCodeErr error
	signInErr   error
	passwordErr error
	logoutErr   error
	loggedOut   bool

	peers       map[string]domain.PeerRef
	lookupCalls []string

	dialogs      []domain.Dialog
	history      []domain.Message
	historyErr   error
	historyCalls int
	lastQuery    domain.HistoryQuery

	messages  map[int64]domain.Message
	media     []byte
	mediaInfo domain.MediaInfo

	deleteErrs map[int64]error
	deleted    []int64
	sentTexts  []string
	sentFiles  []domain.Upload

	joinInfo   domain.GroupInfo
	joinErr    error
	joinedWith string
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.connects.Add(1)
	if f.connectDelay > 0 {
		select {
		case <-time.After(f.connectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.connectGate != nil {
		select {
		case <-f.connectGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.connectErr
}

func (f *fakeClient) IsAuthorized(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorized, nil
}

func (f *fakeClient) Disconnect(context.Context) error {
	f.disconnects.Add(1)
	f.closed.Store(true)
	return f.disconnErr
}

func (f *fakeClient) Closed() bool {
	return f.closed.Load()
}

func (f *fakeClient) SaveSession(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeClient) SendCode(context.Context, string) error {
	return f.sendCodeErr
}

func (f *fakeClient) SignIn(context.Context, string) error {
	if f.signInErr != nil {
		return f.signInErr
	}
	f.login()
	return nil
}

func (f *fakeClient) SignInPassword(context.Context, string) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	f.login()
	return nil
}

func (f *fakeClient) login() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorized = true
	f.session += "-authorized"
}

func (f *fakeClient) LogOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	return f.logoutErr
}

func (f *fakeClient) Lookup(_ context.Context, identifier string) (domain.PeerRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls = append(f.lookupCalls, identifier)
	if p, ok := f.peers[identifier]; ok {
		return p, nil
	}
	return domain.PeerRef{}, domain.ErrChatNotFound
}

func (f *fakeClient) Dialogs(context.Context, int) ([]domain.Dialog, error) {
	return f.dialogs, nil
}

func (f *fakeClient) History(_ context.Context, _ domain.PeerRef, q domain.HistoryQuery) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	f.lastQuery = q
	return f.history, f.historyErr
}

func (f *fakeClient) MessageByID(_ context.Context, _ domain.PeerRef, id int64) (domain.Message, bool, error) {
	m, ok := f.messages[id]
	return m, ok, nil
}

func (f *fakeClient) DownloadMedia(_ context.Context, _ domain.PeerRef, _ int64, w io.Writer) (domain.MediaInfo, error) {
	n, err := w.Write(f.media)
	info := f.mediaInfo
	info.Size = int64(n)
	return info, err
}

func (f *fakeClient) SendMessage(_ context.Context, _ domain.PeerRef, text string, _ int64) (domain.SentMessage, error) {
	f.sentTexts = append(f.sentTexts, text)
	return domain.SentMessage{MessageID: int64(len(f.sentTexts)), Date: time.Unix(1700000000, 0)}, nil
}

func (f *fakeClient) SendFile(_ context.Context, _ domain.PeerRef, _ string, _ int64, file domain.Upload) (domain.SentMessage, error) {
	f.sentFiles = append(f.sentFiles, file)
	return domain.SentMessage{MessageID: 77}, nil
}

func (f *fakeClient) DeleteMessages(_ context.Context, _ domain.PeerRef, ids []int64) error {
	for _, id := range ids {
		if err := f.deleteErrs[id]; err != nil {
			return err
		}
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeClient) ForwardMessage(context.Context, domain.PeerRef, domain.PeerRef, int64) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 500}, nil
}

func (f *fakeClient) EditMessage(_ context.Context, _ domain.PeerRef, id int64, _ string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: id}, nil
}

func (f *fakeClient) JoinPublic(_ context.Context, username string) (domain.GroupInfo, error) {
	f.joinedWith = "public:" + username
	return f.joinInfo, f.joinErr
}

func (f *fakeClient) JoinInvite(_ context.Context, hash string) (domain.GroupInfo, error) {
	f.joinedWith = "invite:" + hash
	return f.joinInfo, f.joinErr
}

// fakeFactory builds clients through build and counts them.
type fakeFactory struct {
	calls atomic.Int32
	build func(session string) *fakeClient

	mu      sync.Mutex
	clients []*fakeClient
}

func newFakeFactory(build func(session string) *fakeClient) *fakeFactory {
	return &fakeFactory{build: build}
}

func (f *fakeFactory) NewClient(session string, _ domain.APICredentials) (ProtocolClient, error) {
	f.calls.Add(1)
	c := f.build(session)
	if c.session == "" {
		c.session = session
	}
	f.mu.Lock()
	f.clients = append(f.clients, c)
	f.mu.Unlock()
	return c, nil
}

func (f *fakeFactory) last() *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients[len(f.clients)-1]
}

func authorizedClient(string) *fakeClient {
	return &fakeClient{authorized: true}
}

func legacyCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec(nil)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func mustToken(t *testing.T, codec *token.Codec, session string) string {
	t.Helper()
	tok, err := codec.Encode(session, testCreds.ID, testCreds.Hash)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return tok
}

func newTestRegistry(t *testing.T, factory ClientFactory, opts ...RegistryOption) *Registry {
	t.Helper()
	opts = append([]RegistryOption{WithRegistryLogger(logger.NewNop())}, opts...)
	return NewRegistry(legacyCodec(t), factory, opts...)
}

func noSleep(context.Context, time.Duration) error { return nil }

func strPtr(s string) *string { return &s }
