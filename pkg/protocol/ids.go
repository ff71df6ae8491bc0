package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// Opaque identifier helpers for MCPL payloads. These are schema-level ids
// (events, inferences, conversations), unrelated to the per-connection
// JSON-RPC request id sequence.

// NewEventID generates an event identifier for push/event params
func NewEventID() string {
	return fmt.Sprintf("evt_%s", uuid.New().String())
}

// NewInferenceID generates an inference identifier for context hooks and
// push-event acknowledgements
func NewInferenceID() string {
	return fmt.Sprintf("inf_%s", uuid.New().String())
}

// NewConversationID generates a conversation identifier
func NewConversationID() string {
	return fmt.Sprintf("conv_%s", uuid.New().String())
}
