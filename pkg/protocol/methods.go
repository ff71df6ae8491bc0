package protocol

import "encoding/json"

// Parameter and result shapes for the MCPL methods. The connection layer
// treats all of these as opaque payloads; they are defined here so that
// embedding applications share one wire-accurate vocabulary.

// FeatureSetDeclaration describes a named capability grouping a server offers
type FeatureSetDeclaration struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Uses        []string `json:"uses,omitempty"`
	Rollback    bool     `json:"rollback,omitempty"`
	HostState   bool     `json:"hostState,omitempty"`
}

// FeatureSetsUpdateParams is the payload of featureSets/update
// (host to server, notification)
type FeatureSetsUpdateParams struct {
	Enabled  []string               `json:"enabled,omitempty"`
	Disabled []string               `json:"disabled,omitempty"`
	Scopes   map[string]ScopeConfig `json:"scopes,omitempty"`
}

// ScopeConfig narrows a feature set to a whitelist or blacklist of operations
type ScopeConfig struct {
	Whitelist []string `json:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`
}

// FeatureSetsChangedParams is the payload of featureSets/changed
// (server to host, notification)
type FeatureSetsChangedParams struct {
	Added   map[string]FeatureSetDeclaration `json:"added,omitempty"`
	Removed []string                         `json:"removed,omitempty"`
}

// ScopeElevateParams is the payload of scope/elevate (server to host, request)
type ScopeElevateParams struct {
	FeatureSet string            `json:"featureSet"`
	Scope      ScopeElevateScope `json:"scope"`
}

// ScopeElevateScope names the elevation being requested
type ScopeElevateScope struct {
	Label   string          `json:"label"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ScopeElevateResult is the host's decision on a scope/elevate request
type ScopeElevateResult struct {
	Approved bool            `json:"approved"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// StateRollbackParams is the payload of state/rollback (host to server, request)
type StateRollbackParams struct {
	FeatureSet string `json:"featureSet"`
	Checkpoint string `json:"checkpoint"`
}

// StateRollbackResult reports the outcome of a rollback
type StateRollbackResult struct {
	Checkpoint string `json:"checkpoint"`
	Success    bool   `json:"success"`
	Reason     string `json:"reason,omitempty"`
}

// StateCheckpoint is checkpoint metadata attached to rollback-capable state
type StateCheckpoint struct {
	ID         string `json:"id"`
	FeatureSet string `json:"featureSet"`
	Timestamp  string `json:"timestamp"`
	Parent     string `json:"parent,omitempty"`
	Label      string `json:"label,omitempty"`
}

// JSONPatchOp enumerates RFC 6902 operations
type JSONPatchOp string

const (
	PatchOpAdd     JSONPatchOp = "add"
	PatchOpRemove  JSONPatchOp = "remove"
	PatchOpReplace JSONPatchOp = "replace"
	PatchOpMove    JSONPatchOp = "move"
	PatchOpCopy    JSONPatchOp = "copy"
	PatchOpTest    JSONPatchOp = "test"
)

// JSONPatchOperation is a single RFC 6902 operation applied to host-managed state
type JSONPatchOperation struct {
	Op    JSONPatchOp     `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
	From  string          `json:"from,omitempty"`
}

// HostManagedState is included in tool results when hostState is enabled
type HostManagedState struct {
	Checkpoint string               `json:"checkpoint"`
	Patch      []JSONPatchOperation `json:"patch,omitempty"`
}

// PushEventParams is the payload of push/event (server to host, request)
type PushEventParams struct {
	FeatureSet string           `json:"featureSet"`
	EventID    string           `json:"eventId"`
	Timestamp  string           `json:"timestamp"`
	Origin     json.RawMessage  `json:"origin,omitempty"`
	Payload    PushEventPayload `json:"payload"`
}

// PushEventPayload carries the event content blocks
type PushEventPayload struct {
	Content []ContentBlock `json:"content"`
}

// PushEventResult is the host's acknowledgement of a push event
type PushEventResult struct {
	Accepted    bool   `json:"accepted"`
	InferenceID string `json:"inferenceId,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ModelInfo describes the model a host runs inference on
type ModelInfo struct {
	ID            string   `json:"id"`
	Vendor        string   `json:"vendor"`
	ContextWindow uint32   `json:"contextWindow"`
	Capabilities  []string `json:"capabilities,omitempty"`
}

// ContextBeforeInferenceParams is the payload of context/beforeInference
// (host to server, request)
type ContextBeforeInferenceParams struct {
	InferenceID    string    `json:"inferenceId"`
	ConversationID string    `json:"conversationId"`
	TurnIndex      uint32    `json:"turnIndex"`
	UserMessage    string    `json:"userMessage,omitempty"`
	Model          ModelInfo `json:"model"`
}

// ContextInjectionPosition places an injection relative to the conversation
type ContextInjectionPosition string

const (
	InjectionSystem     ContextInjectionPosition = "system"
	InjectionBeforeUser ContextInjectionPosition = "beforeUser"
	InjectionAfterUser  ContextInjectionPosition = "afterUser"
)

// ContextInjection is one server-supplied context fragment
type ContextInjection struct {
	Namespace string                   `json:"namespace"`
	Position  ContextInjectionPosition `json:"position"`
	Content   json.RawMessage          `json:"content"`
	Metadata  json.RawMessage          `json:"metadata,omitempty"`
}

// ContextBeforeInferenceResult carries the injections for one feature set
type ContextBeforeInferenceResult struct {
	FeatureSet        string             `json:"featureSet"`
	ContextInjections []ContextInjection `json:"contextInjections"`
}

// ContextAfterInferenceParams is the payload of context/afterInference
// (host to server, request or notification)
type ContextAfterInferenceParams struct {
	InferenceID      string          `json:"inferenceId"`
	ConversationID   string          `json:"conversationId"`
	TurnIndex        uint32          `json:"turnIndex"`
	UserMessage      string          `json:"userMessage"`
	AssistantMessage string          `json:"assistantMessage"`
	Model            ModelInfo       `json:"model"`
	Usage            InferenceUsage  `json:"usage"`
	Channels         json.RawMessage `json:"channels,omitempty"`
}

// ContextAfterInferenceResult optionally rewrites the assistant response
type ContextAfterInferenceResult struct {
	FeatureSet       string          `json:"featureSet"`
	ModifiedResponse string          `json:"modifiedResponse,omitempty"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
}

// InferenceUsage reports token accounting for one inference
type InferenceUsage struct {
	InputTokens  uint32 `json:"inputTokens"`
	OutputTokens uint32 `json:"outputTokens"`
}

// InferenceRequestParams is the payload of inference/request
// (server to host, request)
type InferenceRequestParams struct {
	FeatureSet     string                `json:"featureSet"`
	ConversationID string                `json:"conversationId,omitempty"`
	Stream         bool                  `json:"stream,omitempty"`
	Messages       []InferenceMessage    `json:"messages"`
	Preferences    *InferencePreferences `json:"preferences,omitempty"`
}

// InferenceMessage is one turn of a server-composed prompt
type InferenceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InferencePreferences are hints for the host's model invocation
type InferencePreferences struct {
	MaxTokens   uint32  `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// InferenceRequestResult is the host's completed inference
type InferenceRequestResult struct {
	Content      string         `json:"content"`
	Model        string         `json:"model"`
	FinishReason string         `json:"finishReason"`
	Usage        InferenceUsage `json:"usage"`
}

// InferenceChunkParams is the payload of inference/chunk
// (host to server, notification) for streamed inference
type InferenceChunkParams struct {
	RequestID int64  `json:"requestId"`
	Index     uint32 `json:"index"`
	Delta     string `json:"delta"`
}

// ChannelDirection describes which way messages flow on a channel
type ChannelDirection string

const (
	ChannelOutbound      ChannelDirection = "outbound"
	ChannelInbound       ChannelDirection = "inbound"
	ChannelBidirectional ChannelDirection = "bidirectional"
)

// ChannelDescriptor identifies one externally addressable channel
type ChannelDescriptor struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Label     string           `json:"label"`
	Direction ChannelDirection `json:"direction"`
	Address   json.RawMessage  `json:"address,omitempty"`
	Metadata  json.RawMessage  `json:"metadata,omitempty"`
}

// ChannelsRegisterParams is the payload of channels/register
// (server to host, request)
type ChannelsRegisterParams struct {
	Channels []ChannelDescriptor `json:"channels"`
}

// ChannelsChangedParams is the payload of channels/changed
// (server to host, notification)
type ChannelsChangedParams struct {
	Added   []ChannelDescriptor `json:"added,omitempty"`
	Removed []string            `json:"removed,omitempty"`
	Updated []ChannelDescriptor `json:"updated,omitempty"`
}

// ChannelsListResult is the payload of a channels/list response
type ChannelsListResult struct {
	Channels []ChannelDescriptor `json:"channels"`
}

// ChannelsOpenParams is the payload of channels/open (host to server, request)
type ChannelsOpenParams struct {
	Type     string          `json:"type"`
	Address  json.RawMessage `json:"address"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ChannelsOpenResult carries the descriptor of the opened channel
type ChannelsOpenResult struct {
	Channel ChannelDescriptor `json:"channel"`
}

// ChannelsCloseParams is the payload of channels/close (host to server, request)
type ChannelsCloseParams struct {
	ChannelID string `json:"channelId"`
}

// ChannelsCloseResult acknowledges a channel close
type ChannelsCloseResult struct {
	Closed bool `json:"closed"`
}

// ChannelsOutgoingChunkParams is the payload of channels/outgoing/chunk
// (host to server, notification)
type ChannelsOutgoingChunkParams struct {
	InferenceID    string `json:"inferenceId"`
	ConversationID string `json:"conversationId"`
	ChannelID      string `json:"channelId"`
	Index          uint32 `json:"index"`
	Delta          string `json:"delta"`
}

// ChannelsOutgoingCompleteParams is the payload of channels/outgoing/complete
// (host to server, notification)
type ChannelsOutgoingCompleteParams struct {
	InferenceID    string         `json:"inferenceId"`
	ConversationID string         `json:"conversationId"`
	ChannelID      string         `json:"channelId"`
	Content        []ContentBlock `json:"content"`
}

// ChannelsPublishParams is the payload of channels/publish
// (host to server, notification or request)
type ChannelsPublishParams struct {
	ConversationID string         `json:"conversationId"`
	ChannelID      string         `json:"channelId"`
	Stream         bool           `json:"stream,omitempty"`
	Content        []ContentBlock `json:"content"`
}

// ChannelsPublishResult acknowledges a published message
type ChannelsPublishResult struct {
	Delivered bool   `json:"delivered"`
	MessageID string `json:"messageId,omitempty"`
}

// ChannelsIncomingParams is the payload of channels/incoming
// (server to host, request)
type ChannelsIncomingParams struct {
	Messages []IncomingChannelMessage `json:"messages"`
}

// IncomingChannelMessage is one message delivered from an external channel
type IncomingChannelMessage struct {
	ChannelID string          `json:"channelId"`
	MessageID string          `json:"messageId"`
	ThreadID  string          `json:"threadId,omitempty"`
	Author    MessageAuthor   `json:"author"`
	Timestamp string          `json:"timestamp"`
	Content   []ContentBlock  `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// MessageAuthor identifies the sender of a channel message
type MessageAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChannelsIncomingResult reports per-message acceptance
type ChannelsIncomingResult struct {
	Results []IncomingMessageResult `json:"results"`
}

// IncomingMessageResult is the host's verdict on one incoming channel message
type IncomingMessageResult struct {
	MessageID      string `json:"messageId"`
	Accepted       bool   `json:"accepted"`
	ConversationID string `json:"conversationId,omitempty"`
}
