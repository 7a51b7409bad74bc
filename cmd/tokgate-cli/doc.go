// Command tokgate-cli is the command-line client for tokgate-server.
//
// It drives the REST API for login, dialogs, history, media and message
// writes, inspects session strings offline, and manages a local server
// through its admin socket.
//
// Usage:
//
//	tokgate-cli auth send-code --phone +15550100 --api-id 12345 --api-hash ...
//	tokgate-cli -o json messages list --chat @gophers --limit 20
//	tokgate-cli admin status
//	tokgate-cli shell
//
// Global flags may also come from TOKGATE_* environment variables or the
// profile at ~/.tokgate/cli.yaml.
package main
