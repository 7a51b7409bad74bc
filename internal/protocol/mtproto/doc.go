// Package mtproto adapts github.com/gotd/td to service.ProtocolClient.
//
// A Client owns one MTProto connection. Connect starts the gotd run loop in
// the background and returns once the connection is ready; Disconnect stops
// it. Session state lives in memory only and is exported with SaveSession,
// which is what ends up inside a gateway token.
//
// Remote errors are mapped onto the domain taxonomy in errors.go. FLOOD_WAIT
// becomes domain.ErrRateLimited and is never retried here.
package mtproto
