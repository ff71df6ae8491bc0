package errors

import "fmt"

// Internal codes for connection-level failures. These never travel on the
// wire; they exist so every ConnError has a code to report. Peer RPC codes
// pass through verbatim and are not constrained to this list.
const (
	// CodeTransportError is an I/O failure on the stream
	CodeTransportError int = -32500
	// CodeConnectionClosed is end-of-stream on read
	CodeConnectionClosed int = -32502
	// CodeMalformedMessage is a line that failed parsing, classification, or
	// typed decoding
	CodeMalformedMessage int = -32700
)

// TransportFailure wraps an I/O error from a stream read or write
func TransportFailure(op string, cause error) ConnError {
	return &connError{
		code:     CodeTransportError,
		message:  fmt.Sprintf("transport failure during %s", op),
		category: CategoryTransport,
		cause:    cause,
	}
}

// ConnectionClosed reports end-of-stream observed on read
func ConnectionClosed() ConnError {
	return &connError{
		code:     CodeConnectionClosed,
		message:  "connection closed",
		category: CategoryClosed,
	}
}

// MalformedMessage reports a line that could not be parsed, classified, or
// decoded. The raw wire text is retained for diagnostics and is available
// via RawLine.
func MalformedMessage(raw string, cause error) ConnError {
	return &connError{
		code:     CodeMalformedMessage,
		message:  "malformed message",
		category: CategoryMalformed,
		cause:    cause,
		raw:      raw,
	}
}

// RPCFailure reports an explicit error answer from the peer, carrying its
// numeric code and message text verbatim
func RPCFailure(code int, message string, data []byte) ConnError {
	return &connError{
		code:       code,
		message:    fmt.Sprintf("rpc error %d: %s", code, message),
		category:   CategoryRPC,
		rpcMessage: message,
		data:       data,
	}
}

// RPCCode returns the peer's error code if err is an RPC failure
func RPCCode(err error) (int, bool) {
	if ce, ok := AsConnError(err); ok && ce.Category() == CategoryRPC {
		return ce.Code(), true
	}
	return 0, false
}

// RPCMessage returns the peer's message text if err is an RPC failure
func RPCMessage(err error) (string, bool) {
	ce, ok := AsConnError(err)
	if !ok || ce.Category() != CategoryRPC {
		return "", false
	}
	inner := ce.(*connError)
	return inner.rpcMessage, true
}

// RPCData returns the peer's error data payload if err is an RPC failure
// and the peer attached one
func RPCData(err error) ([]byte, bool) {
	ce, ok := AsConnError(err)
	if !ok || ce.Category() != CategoryRPC {
		return nil, false
	}
	inner := ce.(*connError)
	if inner.data == nil {
		return nil, false
	}
	return inner.data, true
}

// RawLine returns the offending wire text if err is a malformed-message error
func RawLine(err error) (string, bool) {
	ce, ok := AsConnError(err)
	if !ok || ce.Category() != CategoryMalformed {
		return "", false
	}
	inner := ce.(*connError)
	if inner.raw == "" {
		return "", false
	}
	return inner.raw, true
}
