// Package connection talks to a running tokgate-server.
//
// HTTPClient drives the REST API and carries the session string in the
// X-Session-String header. SocketClient drives the local admin socket.
package connection
