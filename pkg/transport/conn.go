package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mcplerrors "github.com/Anarchid/mcpl-core/pkg/errors"
	"github.com/Anarchid/mcpl-core/pkg/logging"
	"github.com/Anarchid/mcpl-core/pkg/protocol"
)

// IncomingMessage is a classified peer-initiated message: exactly one of
// Request and Notification is non-nil. Responses to local calls are never
// delivered this way; they resolve the call that issued them.
type IncomingMessage struct {
	Request      *protocol.Request
	Notification *protocol.Notification
}

// IsRequest reports whether the message expects a response
func (m IncomingMessage) IsRequest() bool {
	return m.Request != nil
}

// Method returns the method name of the underlying message
func (m IncomingMessage) Method() string {
	if m.Request != nil {
		return m.Request.Method
	}
	if m.Notification != nil {
		return m.Notification.Method
	}
	return ""
}

// Metrics receives connection telemetry. observability.ConnMetrics is the
// Prometheus-backed implementation; the interface keeps this package free of
// a collector dependency.
type Metrics interface {
	MessageSent(kind string)
	MessageReceived(kind string)
	OrphanResponse()
	RPCError(code int)
	BacklogDepth(n int)
}

// Option configures a Conn
type Option func(*Conn)

// WithLogger sets the logger used for connection diagnostics. The default
// logs to stderr at Info level.
func WithLogger(logger logging.Logger) Option {
	return func(c *Conn) {
		c.logger = logger
	}
}

// WithMetrics attaches a telemetry recorder to the connection
func WithMetrics(metrics Metrics) Option {
	return func(c *Conn) {
		c.metrics = metrics
	}
}

// WithTracer attaches an OpenTelemetry tracer; each outbound call then runs
// inside a span carrying the method and request id
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Conn) {
		c.tracer = tracer
	}
}

// Conn is a bidirectional JSON-RPC 2.0 connection over an ordered byte
// stream. Messages are framed as newline-delimited JSON; either side may
// initiate calls at any time.
//
// A Conn is owned by a single goroutine: its operations must not be invoked
// concurrently. The one supported overlap is the peer pushing requests and
// notifications while a local SendRequest is awaiting its response; those
// messages are buffered in arrival order and drained by NextMessage. At most
// one local call is outstanding at a time.
//
// Operations observe context cancellation between stream reads and writes; a
// read that is already blocked is unblocked by closing the underlying stream.
type Conn struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	closers []io.Closer

	// nextID is the outbound request id sequence, connection-owned,
	// strictly increasing from 1, never reused.
	nextID int64

	// awaiting is the identifier of the one outstanding local call, or the
	// zero id when idle.
	awaiting protocol.RequestID

	// backlog holds peer requests and notifications observed while a local
	// call was outstanding, in arrival order.
	backlog []IncomingMessage

	closed bool

	logger  logging.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// NewConn creates a connection over a bound network stream. Closing the
// connection closes the stream.
func NewConn(conn net.Conn, opts ...Option) *Conn {
	c := newConn(conn, conn)
	c.closers = []io.Closer{conn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStreamConn creates a connection over an arbitrary reader/writer pair,
// e.g. stdin/stdout. Handles that implement io.Closer are closed by Close.
func NewStreamConn(r io.Reader, w io.Writer, opts ...Option) *Conn {
	c := newConn(r, w)
	if closer, ok := r.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	if closer, ok := w.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
		nextID: 1,
		logger: logging.Default().WithFields(logging.String("component", "mcpl.conn")),
	}
}

// Close flushes pending output and closes the underlying stream. A blocked
// read elsewhere on the connection is unblocked and surfaces a transport
// error. Close is idempotent.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	if err := c.writer.Flush(); err != nil {
		firstErr = mcplerrors.TransportFailure("flush", err)
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = mcplerrors.TransportFailure("close", err)
		}
	}
	return firstErr
}

// SendRequest issues a call to the peer and blocks until the matching
// response arrives. It returns the peer's result payload (JSON null when the
// peer answered with no result) or, when the peer answered with an error
// object, an RPC error carrying the peer's code and message verbatim.
//
// Responses for any other identifier are orphans: they are logged and
// discarded, never mistaken for the awaited response. Peer requests and
// notifications arriving during the wait are buffered for NextMessage.
func (c *Conn) SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if c.closed {
		return nil, mcplerrors.ConnectionClosed()
	}
	if c.awaiting.IsValid() {
		return nil, fmt.Errorf("a call is already outstanding on this connection")
	}

	id := protocol.Int64ID(c.nextID)
	c.nextID++

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "mcpl.SendRequest",
			trace.WithAttributes(
				attribute.String("rpc.method", method),
				attribute.String("rpc.id", id.String()),
			))
		defer span.End()

		result, err := c.sendRequest(ctx, id, method, params)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return result, err
	}

	return c.sendRequest(ctx, id, method, params)
}

func (c *Conn) sendRequest(ctx context.Context, id protocol.RequestID, method string, params interface{}) (json.RawMessage, error) {
	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.awaiting = id
	defer func() { c.awaiting = protocol.RequestID{} }()

	if err := c.writeMessage(ctx, req); err != nil {
		return nil, err
	}
	c.recordSent("request")

	for {
		resp, incoming, err := c.readNext(ctx)
		if err != nil {
			return nil, err
		}

		if resp == nil {
			c.buffer(incoming)
			continue
		}

		if resp.ID != id {
			c.discardOrphan(resp)
			continue
		}

		if resp.Error != nil {
			if c.metrics != nil {
				c.metrics.RPCError(resp.Error.Code)
			}
			return nil, mcplerrors.RPCFailure(resp.Error.Code, resp.Error.Message, resp.Error.Data)
		}
		return resp.Result, nil
	}
}

// SendNotification sends a fire-and-forget message; no identifier is
// allocated and no response is expected
func (c *Conn) SendNotification(ctx context.Context, method string, params interface{}) error {
	if c.closed {
		return mcplerrors.ConnectionClosed()
	}
	notif, err := protocol.NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}
	if err := c.writeMessage(ctx, notif); err != nil {
		return err
	}
	c.recordSent("notification")
	return nil
}

// SendResponse answers a previously received request, echoing its identifier.
// The connection does not track which inbound requests are unanswered; that
// bookkeeping belongs to the caller consuming NextMessage.
func (c *Conn) SendResponse(ctx context.Context, id protocol.RequestID, result interface{}) error {
	if c.closed {
		return mcplerrors.ConnectionClosed()
	}
	resp, err := protocol.NewResponse(id, result)
	if err != nil {
		return fmt.Errorf("failed to build response: %w", err)
	}
	if err := c.writeMessage(ctx, resp); err != nil {
		return err
	}
	c.recordSent("response")
	return nil
}

// SendError answers a previously received request with an error object
func (c *Conn) SendError(ctx context.Context, id protocol.RequestID, code int, message string) error {
	if c.closed {
		return mcplerrors.ConnectionClosed()
	}
	resp, err := protocol.NewErrorResponse(id, code, message, nil)
	if err != nil {
		return fmt.Errorf("failed to build error response: %w", err)
	}
	if err := c.writeMessage(ctx, resp); err != nil {
		return err
	}
	c.recordSent("error_response")
	return nil
}

// NextMessage returns the next peer-initiated request or notification.
// Messages buffered during an earlier SendRequest are drained first, in
// arrival order, before any fresh read is attempted. Responses read here
// belong to no outstanding call and are discarded as orphans.
func (c *Conn) NextMessage(ctx context.Context) (IncomingMessage, error) {
	if c.closed {
		return IncomingMessage{}, mcplerrors.ConnectionClosed()
	}

	if len(c.backlog) > 0 {
		msg := c.backlog[0]
		c.backlog = c.backlog[1:]
		if c.metrics != nil {
			c.metrics.BacklogDepth(len(c.backlog))
		}
		return msg, nil
	}

	for {
		resp, incoming, err := c.readNext(ctx)
		if err != nil {
			return IncomingMessage{}, err
		}
		if resp != nil {
			c.discardOrphan(resp)
			continue
		}
		return incoming, nil
	}
}

// writeMessage serializes one message as a single newline-terminated line and
// flushes it so the bytes are observably sent before returning
func (c *Conn) writeMessage(ctx context.Context, msg interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := c.writer.Write(data); err != nil {
		return mcplerrors.TransportFailure("write", err)
	}
	if err := c.writer.WriteByte('\n'); err != nil {
		return mcplerrors.TransportFailure("write", err)
	}
	if err := c.writer.Flush(); err != nil {
		return mcplerrors.TransportFailure("flush", err)
	}
	return nil
}

// readNext reads one line, classifies it, and decodes it. It returns either
// a response or an incoming message, never both.
func (c *Conn) readNext(ctx context.Context) (*protocol.Response, IncomingMessage, error) {
	line, err := c.readLine(ctx)
	if err != nil {
		return nil, IncomingMessage{}, err
	}

	msgType, err := protocol.Classify(line)
	if err != nil {
		return nil, IncomingMessage{}, mcplerrors.MalformedMessage(string(line), err)
	}
	c.recordReceived(msgType.String())

	switch msgType {
	case protocol.MessageRequest:
		req, err := protocol.ParseRequest(line)
		if err != nil {
			return nil, IncomingMessage{}, mcplerrors.MalformedMessage(string(line), err)
		}
		return nil, IncomingMessage{Request: req}, nil

	case protocol.MessageResponse:
		resp, err := protocol.ParseResponse(line)
		if err != nil {
			return nil, IncomingMessage{}, mcplerrors.MalformedMessage(string(line), err)
		}
		return resp, IncomingMessage{}, nil

	default:
		notif, err := protocol.ParseNotification(line)
		if err != nil {
			return nil, IncomingMessage{}, mcplerrors.MalformedMessage(string(line), err)
		}
		return nil, IncomingMessage{Notification: notif}, nil
	}
}

// readLine reads the next non-blank line, delimiter stripped. Blank lines
// are keep-alives some peers emit and are skipped. A clean end-of-stream is
// the fatal closed condition.
func (c *Conn) readLine(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := c.reader.ReadBytes('\n')
		if err == io.EOF {
			if len(bytes.TrimSpace(line)) == 0 {
				return nil, mcplerrors.ConnectionClosed()
			}
			// Final line without a trailing delimiter; the next read
			// observes the closed stream.
		} else if err != nil {
			return nil, mcplerrors.TransportFailure("read", err)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		return trimmed, nil
	}
}

func (c *Conn) buffer(msg IncomingMessage) {
	c.backlog = append(c.backlog, msg)
	c.logger.Debug("buffered peer message during outstanding call",
		logging.String("method", msg.Method()),
		logging.Int("backlog_depth", len(c.backlog)),
	)
	if c.metrics != nil {
		c.metrics.BacklogDepth(len(c.backlog))
	}
}

// discardOrphan absorbs a response that no local call is waiting on. Orphans
// are a diagnostic, not an error: the caller that abandoned the id is gone.
func (c *Conn) discardOrphan(resp *protocol.Response) {
	c.logger.Warn("discarding response with unknown id",
		logging.String("response_id", resp.ID.String()),
		logging.String("awaiting_id", c.awaiting.String()),
	)
	if c.metrics != nil {
		c.metrics.OrphanResponse()
	}
}

func (c *Conn) recordSent(kind string) {
	if c.metrics != nil {
		c.metrics.MessageSent(kind)
	}
}

func (c *Conn) recordReceived(kind string) {
	if c.metrics != nil {
		c.metrics.MessageReceived(kind)
	}
}
