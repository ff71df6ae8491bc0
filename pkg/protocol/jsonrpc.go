package protocol

import (
	"encoding/json"
	"fmt"
)

const (
	// JSONRPCVersion is the supported JSON-RPC version
	JSONRPCVersion = "2.0"
)

// JSONRPCMessage carries the protocol version tag present on every message
type JSONRPCMessage struct {
	JSONRPC string `json:"jsonrpc"`
}

// RequestID identifies a request on the wire. JSON-RPC permits both integer
// and string identifiers; the variant is preserved so that a response echoes
// the identifier exactly as it was received. RequestID is comparable, so it
// can be used directly as a correlation key. The zero value is absent (no id).
type RequestID struct {
	kind idKind
	num  int64
	str  string
}

type idKind uint8

const (
	idAbsent idKind = iota
	idInt
	idString
)

// Int64ID returns an integer request identifier.
func Int64ID(n int64) RequestID {
	return RequestID{kind: idInt, num: n}
}

// StringID returns a string request identifier.
func StringID(s string) RequestID {
	return RequestID{kind: idString, str: s}
}

// IsValid reports whether the identifier is present.
func (id RequestID) IsValid() bool {
	return id.kind != idAbsent
}

// Int64 returns the integer value of the identifier, if it is the integer variant.
func (id RequestID) Int64() (int64, bool) {
	return id.num, id.kind == idInt
}

// Text returns the string value of the identifier, if it is the string variant.
func (id RequestID) Text() (string, bool) {
	return id.str, id.kind == idString
}

// String renders the identifier for diagnostics. String identifiers are quoted
// so that 42 and "42" remain distinguishable.
func (id RequestID) String() string {
	switch id.kind {
	case idInt:
		return fmt.Sprintf("%d", id.num)
	case idString:
		return fmt.Sprintf("%q", id.str)
	default:
		return "<absent>"
	}
}

// MarshalJSON implements json.Marshaler
func (id RequestID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idInt:
		return json.Marshal(id.num)
	case idString:
		return json.Marshal(id.str)
	default:
		return nil, fmt.Errorf("cannot marshal absent request id")
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RequestID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("invalid request id: %s", string(data))
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid request id %s: %w", string(data), err)
	}
	*id = Int64ID(n)
	return nil
}

// Request represents a JSON-RPC 2.0 request
type Request struct {
	JSONRPCMessage
	ID     RequestID       `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewRequest creates a new JSON-RPC 2.0 request
func NewRequest(id RequestID, method string, params interface{}) (*Request, error) {
	paramsJSON, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Method:         method,
		Params:         paramsJSON,
	}, nil
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result and
// Error is present on the wire; an absent result is encoded as null.
type Response struct {
	JSONRPCMessage
	ID     RequestID       `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// NewResponse creates a new JSON-RPC 2.0 success response
func NewResponse(id RequestID, result interface{}) (*Response, error) {
	resultJSON, err := marshalOptional(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	if resultJSON == nil {
		resultJSON = json.RawMessage("null")
	}

	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Result:         resultJSON,
	}, nil
}

// NewErrorResponse creates a new JSON-RPC 2.0 error response
func NewErrorResponse(id RequestID, code int, message string, data interface{}) (*Response, error) {
	dataJSON, err := marshalOptional(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error data: %w", err)
	}

	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    dataJSON,
		},
	}, nil
}

// Notification represents a JSON-RPC 2.0 notification. It carries no
// identifier field at all.
type Notification struct {
	JSONRPCMessage
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewNotification creates a new JSON-RPC 2.0 notification
func NewNotification(method string, params interface{}) (*Notification, error) {
	paramsJSON, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Notification{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		Method:         method,
		Params:         paramsJSON,
	}, nil
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("jsonrpc: code %d, message: %s", e.Code, e.Message)
}

func marshalOptional(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
