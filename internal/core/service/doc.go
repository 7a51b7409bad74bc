// Package service implements the gateway core on top of a ProtocolClient.
//
//   - Registry: at most one live connection per session token, created on
//     demand and single-flight per token
//   - Resolver: chat identifiers to protocol peers
//   - HistoryFetcher: paced dialog and history reads
//   - AuthService, ChatService, MessageService, GroupService: the operations
//     the HTTP API exposes
//
// Services hold no durable state. Everything a connection needs is carried
// in the token, so a registry entry can always be rebuilt; login clients are
// the exception and are only reachable until their login completes.
package service
