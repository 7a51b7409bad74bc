// Package localserver provides the local management server.
//
// It listens on a Unix domain socket and speaks a line protocol: each line
// is a command with optional arguments, answered by one or more lines and
// a terminating "ok" or "error: <reason>" line.
//
//	status    connections=N uptime=...
//	drain     disconnects every cached client
//	reload    re-applies the log level from the config file
//	shutdown  starts graceful shutdown
//
// Access is controlled by socket file permissions; there is no session
// header on this surface.
package localserver
