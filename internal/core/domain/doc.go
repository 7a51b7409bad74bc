// Package domain defines the value types shared by the gateway core.
//
// Types here carry no IO and no protocol-library types:
//
//   - APICredentials: the caller's developer-console id and hash
//   - PeerRef: a protocol-native address produced by entity resolution
//   - Entity: the closed set of chat kinds returned by dialog listings
//   - Message, MessagePage, HistoryQuery: history retrieval
//   - Errors: the gateway error taxonomy
package domain
