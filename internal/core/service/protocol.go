package service

import (
	"context"
	"io"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// Connection is the lifecycle half of a protocol client.
type Connection interface {
	// Connect opens the transport. It returns once the client can serve
	// requests, or with the first connect error.
	Connect(ctx context.Context) error

	// IsAuthorized reports whether the session is logged in.
	IsAuthorized(ctx context.Context) (bool, error)

	// Disconnect closes the transport. It is idempotent; calls made after it
	// fail with domain.ErrClientClosed.
	Disconnect(ctx context.Context) error

	// Closed reports whether the connection has ended, through Disconnect
	// or because its transport stopped. A closed client never reopens.
	Closed() bool

	// SaveSession serializes the current session. The result never contains
	// ':' so it can lead a token.
	SaveSession(ctx context.Context) (string, error)
}

// Authenticator drives the login flow on a connected client.
type Authenticator interface {
	// SendCode requests a login code for phone. The client keeps the code
	// hash for the following SignIn.
	SendCode(ctx context.Context, phone string) error

	// SignIn completes login with the code. It returns
	// domain.ErrPasswordRequired when two-step verification is enabled.
	SignIn(ctx context.Context, code string) error

	// SignInPassword completes two-step verification.
	SignInPassword(ctx context.Context, password string) error

	// LogOut terminates the remote session.
	LogOut(ctx context.Context) error
}

// Reader covers entity lookups and history reads.
type Reader interface {
	// Lookup resolves a username (optionally '@'-prefixed), a phone or a
	// positive numeric id. Failure is domain.ErrChatNotFound.
	Lookup(ctx context.Context, identifier string) (domain.PeerRef, error)

	// Dialogs lists up to limit dialogs, newest first.
	Dialogs(ctx context.Context, limit int) ([]domain.Dialog, error)

	// History fetches one bounded page of messages, newest first.
	History(ctx context.Context, peer domain.PeerRef, q domain.HistoryQuery) ([]domain.Message, error)

	// MessageByID returns false when the message does not exist.
	MessageByID(ctx context.Context, peer domain.PeerRef, id int64) (domain.Message, bool, error)

	// DownloadMedia streams the media of a message into w.
	DownloadMedia(ctx context.Context, peer domain.PeerRef, id int64, w io.Writer) (domain.MediaInfo, error)
}

// Writer covers outgoing message operations.
type Writer interface {
	SendMessage(ctx context.Context, peer domain.PeerRef, text string, replyTo int64) (domain.SentMessage, error)
	SendFile(ctx context.Context, peer domain.PeerRef, caption string, replyTo int64, file domain.Upload) (domain.SentMessage, error)
	DeleteMessages(ctx context.Context, peer domain.PeerRef, ids []int64) error
	ForwardMessage(ctx context.Context, from, to domain.PeerRef, id int64) (domain.SentMessage, error)
	EditMessage(ctx context.Context, peer domain.PeerRef, id int64, text string) (domain.SentMessage, error)
}

// GroupJoiner joins groups and channels.
type GroupJoiner interface {
	// JoinPublic joins by public username.
	JoinPublic(ctx context.Context, username string) (domain.GroupInfo, error)

	// JoinInvite joins by invite hash. Existing membership returns the chat
	// instead of an error.
	JoinInvite(ctx context.Context, hash string) (domain.GroupInfo, error)
}

// ProtocolClient is one live connection to the remote service.
type ProtocolClient interface {
	Connection
	Authenticator
	Reader
	Writer
	GroupJoiner
}

// ClientFactory builds unconnected clients. An empty session starts a fresh
// login.
type ClientFactory interface {
	NewClient(session string, creds domain.APICredentials) (ProtocolClient, error)
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(session string, creds domain.APICredentials) (ProtocolClient, error)

// NewClient implements ClientFactory.
func (f ClientFactoryFunc) NewClient(session string, creds domain.APICredentials) (ProtocolClient, error) {
	return f(session, creds)
}
