package protocol

const (
	// ProtocolVersion is the MCPL extension revision negotiated under
	// experimental.mcpl during initialize
	ProtocolVersion = "0.4"

	// MCPRevision is the MCP protocol revision the extension rides on
	MCPRevision = "2024-11-05"
)

// MCPL method names
const (
	// Lifecycle
	MethodInitialize = "initialize"

	// Feature sets
	MethodFeatureSetsUpdate  = "featureSets/update"
	MethodFeatureSetsChanged = "featureSets/changed"

	// Scoped access
	MethodScopeElevate = "scope/elevate"

	// State management
	MethodStateRollback = "state/rollback"

	// Push events
	MethodPushEvent = "push/event"

	// Context hooks
	MethodContextBeforeInference = "context/beforeInference"
	MethodContextAfterInference  = "context/afterInference"

	// Server-initiated inference
	MethodInferenceRequest = "inference/request"
	MethodInferenceChunk   = "inference/chunk"

	// Model information
	MethodModelInfo = "model/info"

	// Channels
	MethodChannelsRegister         = "channels/register"
	MethodChannelsChanged          = "channels/changed"
	MethodChannelsList             = "channels/list"
	MethodChannelsOpen             = "channels/open"
	MethodChannelsClose            = "channels/close"
	MethodChannelsOutgoingChunk    = "channels/outgoing/chunk"
	MethodChannelsOutgoingComplete = "channels/outgoing/complete"
	MethodChannelsPublish          = "channels/publish"
	MethodChannelsIncoming         = "channels/incoming"
)

// JSON-RPC 2.0 standard error codes
const (
	CodeParseError     int = -32700
	CodeInvalidRequest int = -32600
	CodeMethodNotFound int = -32601
	CodeInvalidParams  int = -32602
	CodeInternalError  int = -32603
)

// MCPL domain error codes. These are peer-defined: the connection layer
// carries them verbatim and never interprets them.
const (
	// CodeFeatureSetNotEnabled indicates a call into a feature set that is not enabled
	CodeFeatureSetNotEnabled int = -32001
	// CodeUnknownFeatureSet indicates a feature set name the peer does not declare
	CodeUnknownFeatureSet int = -32003
	// CodeCheckpointNotFound indicates a rollback target that does not exist
	CodeCheckpointNotFound int = -32005
	// CodeChannelNotPermitted indicates a channel operation outside granted scope
	CodeChannelNotPermitted int = -32017
	// CodeUnknownChannel indicates a channel id the peer does not know
	CodeUnknownChannel int = -32023
	// CodeChannelOpenFailed indicates the peer could not open a channel
	CodeChannelOpenFailed int = -32024
)
