// Package protocol defines the wire types for the MCPL host/server extension.
//
// MCPL is a bidirectional JSON-RPC 2.0 protocol layered over the Model
// Context Protocol: either side may initiate calls at any time on a single
// logical connection. This package covers three layers of that wire format:
//
//   - JSON-RPC framing types: Request, Response, Notification, Error, and
//     the RequestID integer-or-string identifier sum.
//   - Structural classification: Classify inspects field presence to decide
//     which of the three shapes a raw line is, before any typed decoding.
//     JSON-RPC puts no discriminant field on the wire, so relying on a
//     decoder's try-each-variant behavior can silently pick the wrong shape;
//     classification is an explicit ordered rule set instead.
//   - MCPL vocabulary: method name constants, domain error codes, capability
//     negotiation records (riding MCP's initialize under experimental.mcpl),
//     method parameter/result shapes, and content block variants.
//
// The connection layer in pkg/transport uses only the framing and
// classification layers; the MCPL vocabulary is inert data carried opaquely.
//
// # Example Messages
//
// Request:
//
//	{"jsonrpc":"2.0","id":1,"method":"initialize","params":{...}}
//
// Response:
//
//	{"jsonrpc":"2.0","id":1,"result":{...}}
//
// Notification:
//
//	{"jsonrpc":"2.0","method":"featureSets/update","params":{"enabled":["lobby","game"]}}
package protocol
