// Package command defines the tokgate-cli commands on urfave/cli/v2.
//
// Every API command builds an HTTP client from the global --server and
// --session flags, calls one gateway route and renders the result in the
// --output format. The token and admin commands work without the REST
// API: token inspect is offline, admin talks to the local socket.
package command
