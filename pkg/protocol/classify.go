package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the structural shape of an incoming JSON-RPC message.
type MessageType int

const (
	// MessageRequest is a message with an id and a method
	MessageRequest MessageType = iota + 1
	// MessageResponse is a message with an id and a result or error
	MessageResponse
	// MessageNotification is a message with a method and no id
	MessageNotification
)

// String returns the string representation of a message type
func (t MessageType) String() string {
	switch t {
	case MessageRequest:
		return "request"
	case MessageResponse:
		return "response"
	case MessageNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// classifyProbe captures field presence without committing to a typed shape.
// RawMessage fields are nil when the key is absent, so presence and value can
// be distinguished (a "result": null still counts as a present result).
type classifyProbe struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Classify determines the shape of a raw JSON-RPC message by field presence.
// JSON-RPC carries no explicit discriminant, so the rules are applied in
// priority order: id+method is a request, id+result/error is a response,
// method without id is a notification. Anything else is an error; callers
// must never drop such a message silently.
//
// Classification is structural only. Typed decoding is a separate step
// (ParseRequest, ParseResponse, ParseNotification) so that a malformed
// request is reported as such rather than misread as a different shape.
func Classify(data []byte) (MessageType, error) {
	var probe classifyProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "id": null is treated as absent; no valid MCPL message
	// carries a null identifier.
	hasID := len(probe.ID) > 0 && string(probe.ID) != "null"
	hasMethod := probe.Method != ""
	hasResult := len(probe.Result) > 0
	hasError := len(probe.Error) > 0

	switch {
	case hasID && hasMethod:
		return MessageRequest, nil
	case hasID && (hasResult || hasError):
		return MessageResponse, nil
	case hasMethod && !hasID:
		return MessageNotification, nil
	default:
		return 0, fmt.Errorf("message is not a request, response, or notification")
	}
}

// ParseRequest decodes an already-classified request
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if !req.ID.IsValid() {
		return nil, fmt.Errorf("request is missing an id")
	}
	if req.Method == "" {
		return nil, fmt.Errorf("request is missing a method")
	}
	return &req, nil
}

// ParseResponse decodes an already-classified response and enforces that it
// carries exactly one of result and error.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.ID.IsValid() {
		return nil, fmt.Errorf("response is missing an id")
	}
	if resp.Error != nil && len(resp.Result) > 0 {
		return nil, fmt.Errorf("response %s carries both result and error", resp.ID)
	}
	if resp.Error == nil && len(resp.Result) == 0 {
		return nil, fmt.Errorf("response %s carries neither result nor error", resp.ID)
	}
	return &resp, nil
}

// ParseNotification decodes an already-classified notification
func ParseNotification(data []byte) (*Notification, error) {
	var notif Notification
	if err := json.Unmarshal(data, &notif); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	if notif.Method == "" {
		return nil, fmt.Errorf("notification is missing a method")
	}
	return &notif, nil
}
