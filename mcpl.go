// Package mcpl provides the connection core for MCPL, the Model Context
// Protocol for Live interaction: a bidirectional JSON-RPC 2.0 layer over
// which hosts and servers exchange requests in both directions on a single
// stream.
package mcpl

import (
	"github.com/Anarchid/mcpl-core/pkg/protocol"
	"github.com/Anarchid/mcpl-core/pkg/transport"
)

// Version is the current version of the library
const Version = "0.4.0"

// ProtocolVersion is the MCPL protocol revision this library implements
const ProtocolVersion = protocol.ProtocolVersion

// These exports provide direct access to the core components
var (
	// NewConn creates a connection over a bound network stream
	NewConn = transport.NewConn

	// NewStreamConn creates a connection over a reader/writer pair such as
	// stdin/stdout
	NewStreamConn = transport.NewStreamConn

	// WithLogger sets the connection's diagnostic logger
	WithLogger = transport.WithLogger

	// WithMetrics attaches a telemetry recorder to the connection
	WithMetrics = transport.WithMetrics

	// WithTracer attaches an OpenTelemetry tracer to the connection
	WithTracer = transport.WithTracer
)

// Request identifier constructors
var (
	// Int64ID returns an integer request identifier
	Int64ID = protocol.Int64ID

	// StringID returns a string request identifier
	StringID = protocol.StringID
)
