package protocol

import "encoding/json"

// MCPL capability negotiation rides on MCP's initialize handshake: both sides
// declare an McplCapabilities record nested under experimental.mcpl in the
// standard initialize params and result.

// McplCapabilities is the MCPL capability declaration
type McplCapabilities struct {
	Version          string                  `json:"version"`
	PushEvents       bool                    `json:"pushEvents,omitempty"`
	ContextHooks     *ContextHooksCap        `json:"contextHooks,omitempty"`
	InferenceRequest *InferenceRequestCap    `json:"inferenceRequest,omitempty"`
	StreamObserver   bool                    `json:"streamObserver,omitempty"`
	Rollback         bool                    `json:"rollback,omitempty"`
	Channels         bool                    `json:"channels,omitempty"`
	ModelInfo        bool                    `json:"modelInfo,omitempty"`
	FeatureSets      []FeatureSetDeclaration `json:"featureSets,omitempty"`
	ScopedAccess     bool                    `json:"scopedAccess,omitempty"`
}

// NewMcplCapabilities returns a capability record for the given MCPL version
// with every optional capability off
func NewMcplCapabilities(version string) *McplCapabilities {
	return &McplCapabilities{Version: version}
}

// HasInferenceRequest reports whether server-initiated inference is enabled
func (c *McplCapabilities) HasInferenceRequest() bool {
	return c.InferenceRequest != nil && c.InferenceRequest.Enabled()
}

// HasInferenceStreaming reports whether streamed inference chunks are supported
func (c *McplCapabilities) HasInferenceStreaming() bool {
	return c.InferenceRequest != nil && c.InferenceRequest.SupportsStreaming()
}

// InferenceRequestCap is either the simple boolean form `true` or the
// detailed object form `{"streaming": bool}`.
type InferenceRequestCap struct {
	enabled   bool
	detailed  bool
	streaming bool
}

// SimpleInferenceRequestCap returns the boolean capability form
func SimpleInferenceRequestCap(enabled bool) *InferenceRequestCap {
	return &InferenceRequestCap{enabled: enabled}
}

// DetailedInferenceRequestCap returns the object capability form
func DetailedInferenceRequestCap(streaming bool) *InferenceRequestCap {
	return &InferenceRequestCap{enabled: true, detailed: true, streaming: streaming}
}

// Enabled reports whether the capability is on in either form
func (c *InferenceRequestCap) Enabled() bool {
	return c.enabled
}

// SupportsStreaming reports whether the detailed form enables streaming
func (c *InferenceRequestCap) SupportsStreaming() bool {
	return c.detailed && c.streaming
}

// MarshalJSON implements json.Marshaler
func (c InferenceRequestCap) MarshalJSON() ([]byte, error) {
	if !c.detailed {
		return json.Marshal(c.enabled)
	}
	return json.Marshal(struct {
		Streaming bool `json:"streaming"`
	}{Streaming: c.streaming})
}

// UnmarshalJSON implements json.Unmarshaler, accepting both wire forms
func (c *InferenceRequestCap) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = InferenceRequestCap{enabled: b}
		return nil
	}
	var detail struct {
		Streaming bool `json:"streaming"`
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		return err
	}
	*c = InferenceRequestCap{enabled: true, detailed: true, streaming: detail.Streaming}
	return nil
}

// ContextHooksCap declares which context hooks the server wants
type ContextHooksCap struct {
	BeforeInference bool               `json:"beforeInference,omitempty"`
	AfterInference  *AfterInferenceCap `json:"afterInference,omitempty"`
}

// AfterInferenceCap configures the after-inference hook
type AfterInferenceCap struct {
	Blocking bool `json:"blocking,omitempty"`
}

// ExperimentalCapabilities is the experimental section of MCP capabilities
type ExperimentalCapabilities struct {
	Mcpl *McplCapabilities `json:"mcpl,omitempty"`
}

// InitializeCapabilities wraps the experimental section while passing through
// standard MCP capabilities untouched
type InitializeCapabilities struct {
	Experimental *ExperimentalCapabilities  `json:"experimental,omitempty"`
	Other        map[string]json.RawMessage `json:"-"`
}

// MarshalJSON implements json.Marshaler, flattening Other alongside experimental
func (c InitializeCapabilities) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Other)+1)
	for k, v := range c.Other {
		out[k] = v
	}
	if c.Experimental != nil {
		exp, err := json.Marshal(c.Experimental)
		if err != nil {
			return nil, err
		}
		out["experimental"] = exp
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, splitting experimental from the rest
func (c *InitializeCapabilities) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if exp, ok := raw["experimental"]; ok {
		c.Experimental = &ExperimentalCapabilities{}
		if err := json.Unmarshal(exp, c.Experimental); err != nil {
			return err
		}
		delete(raw, "experimental")
	}
	if len(raw) > 0 {
		c.Other = raw
	}
	return nil
}

// ImplementationInfo names one side of the connection
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is the MCP initialize request payload carrying MCPL capabilities
type InitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    InitializeCapabilities `json:"capabilities"`
	ClientInfo      ImplementationInfo     `json:"clientInfo"`
}

// InitializeResult is the MCP initialize response payload carrying MCPL capabilities
type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    InitializeCapabilities `json:"capabilities"`
	ServerInfo      ImplementationInfo     `json:"serverInfo"`
}

// Mcpl returns the negotiated MCPL capability record, or nil if the peer did
// not declare one
func (c *InitializeCapabilities) Mcpl() *McplCapabilities {
	if c == nil || c.Experimental == nil {
		return nil
	}
	return c.Experimental.Mcpl
}
