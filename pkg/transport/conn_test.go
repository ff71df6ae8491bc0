package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	mcplerrors "github.com/Anarchid/mcpl-core/pkg/errors"
	"github.com/Anarchid/mcpl-core/pkg/logging"
	"github.com/Anarchid/mcpl-core/pkg/protocol"
)

// scriptedConn builds a connection whose inbound side replays the given wire
// text and whose outbound side is captured in the returned buffer.
func scriptedConn(input string, opts ...Option) (*Conn, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	return NewStreamConn(strings.NewReader(input), out, opts...), out
}

// sentLines decodes each newline-terminated line the connection wrote.
func sentLines(t *testing.T, out *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if raw == "" {
			continue
		}
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &decoded), "sent line should be valid JSON: %s", raw)
		lines = append(lines, decoded)
	}
	return lines
}

type fakeMetrics struct {
	sent     map[string]int
	received map[string]int
	orphans  int
	rpcCodes []int
	backlog  []int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{sent: map[string]int{}, received: map[string]int{}}
}

func (m *fakeMetrics) MessageSent(kind string)     { m.sent[kind]++ }
func (m *fakeMetrics) MessageReceived(kind string) { m.received[kind]++ }
func (m *fakeMetrics) OrphanResponse()             { m.orphans++ }
func (m *fakeMetrics) RPCError(code int)           { m.rpcCodes = append(m.rpcCodes, code) }
func (m *fakeMetrics) BacklogDepth(n int)          { m.backlog = append(m.backlog, n) }

func TestSendRequestSuccess(t *testing.T) {
	conn, out := scriptedConn(`{"jsonrpc":"2.0","id":1,"result":{"status":"accepted"}}` + "\n")

	result, err := conn.SendRequest(context.Background(), protocol.MethodPushEvent, map[string]string{"eventId": "evt_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"accepted"}`, string(result))

	lines := sentLines(t, out)
	require.Len(t, lines, 1)
	assert.Equal(t, "2.0", lines[0]["jsonrpc"])
	assert.Equal(t, float64(1), lines[0]["id"])
	assert.Equal(t, protocol.MethodPushEvent, lines[0]["method"])
}

func TestSendRequestNullResult(t *testing.T) {
	conn, _ := scriptedConn(`{"jsonrpc":"2.0","id":1,"result":null}` + "\n")

	result, err := conn.SendRequest(context.Background(), "featureSets/update", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(result))
}

func TestSendRequestRPCError(t *testing.T) {
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"Checkpoint not found"}}`+"\n",
		WithMetrics(metrics),
	)

	_, err := conn.SendRequest(context.Background(), protocol.MethodStateRollback, map[string]string{"checkpointId": "missing"})
	require.Error(t, err)

	assert.True(t, mcplerrors.IsRPC(err), "peer error answer should be an RPC error")
	assert.False(t, mcplerrors.IsFatal(err), "an RPC error is a normal protocol outcome")

	code, ok := mcplerrors.RPCCode(err)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeCheckpointNotFound, code)

	message, ok := mcplerrors.RPCMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Checkpoint not found", message)

	assert.Equal(t, []int{-32005}, metrics.rpcCodes)
}

func TestSendRequestIDsAreMonotonic(t *testing.T) {
	conn, out := scriptedConn(
		`{"jsonrpc":"2.0","id":1,"result":null}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"result":null}` + "\n",
	)

	_, err := conn.SendRequest(context.Background(), "first", nil)
	require.NoError(t, err)
	_, err = conn.SendRequest(context.Background(), "second", nil)
	require.NoError(t, err)

	lines := sentLines(t, out)
	require.Len(t, lines, 2)
	assert.Equal(t, float64(1), lines[0]["id"])
	assert.Equal(t, float64(2), lines[1]["id"])
}

func TestSendRequestBuffersPeerTraffic(t *testing.T) {
	// A notification and a request arrive before the awaited response; both
	// must survive the call and come out of NextMessage in arrival order.
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","method":"featureSets/changed","params":{"added":{"calendar":{"name":"calendar"}}}}`+"\n"+
			`{"jsonrpc":"2.0","id":"srv-1","method":"push/event","params":{"eventId":"evt_9"}}`+"\n"+
			`{"jsonrpc":"2.0","id":1,"result":null}`+"\n",
		WithMetrics(metrics),
	)

	_, err := conn.SendRequest(context.Background(), protocol.MethodInitialize, nil)
	require.NoError(t, err)

	first, err := conn.NextMessage(context.Background())
	require.NoError(t, err)
	assert.False(t, first.IsRequest())
	assert.Equal(t, protocol.MethodFeatureSetsChanged, first.Method())

	second, err := conn.NextMessage(context.Background())
	require.NoError(t, err)
	require.True(t, second.IsRequest())
	assert.Equal(t, protocol.MethodPushEvent, second.Method())
	text, ok := second.Request.ID.Text()
	require.True(t, ok)
	assert.Equal(t, "srv-1", text)

	assert.Equal(t, []int{1, 2, 1, 0}, metrics.backlog)
}

func TestSendRequestDiscardsOrphanResponses(t *testing.T) {
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":99,"result":{"stale":true}}`+"\n"+
			`{"jsonrpc":"2.0","id":1,"result":{"fresh":true}}`+"\n",
		WithMetrics(metrics),
	)

	result, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fresh":true}`, string(result))
	assert.Equal(t, 1, metrics.orphans)
}

func TestSendRequestAbsorbsOrphanErrorResponse(t *testing.T) {
	// An error response for an id nobody awaits is discarded like any other
	// orphan; it must not fail the pending call.
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":7,"error":{"code":-32005,"message":"Checkpoint not found"}}`+"\n"+
			`{"jsonrpc":"2.0","id":1,"result":{"fresh":true}}`+"\n",
		WithMetrics(metrics),
	)

	result, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fresh":true}`, string(result))
	assert.Equal(t, 1, metrics.orphans)
	assert.Empty(t, metrics.rpcCodes, "an orphan error response is not an RPC failure of the pending call")
}

func TestSendRequestDistinguishesStringAndIntIDs(t *testing.T) {
	// A response carrying "1" as a string must not resolve a call awaiting
	// the integer 1.
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":"1","result":{"stale":true}}`+"\n"+
			`{"jsonrpc":"2.0","id":1,"result":{"fresh":true}}`+"\n",
		WithMetrics(metrics),
	)

	result, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fresh":true}`, string(result))
	assert.Equal(t, 1, metrics.orphans)
}

func TestSendRequestRejectsReentrantCall(t *testing.T) {
	conn, _ := scriptedConn("")
	conn.awaiting = protocol.Int64ID(7)

	_, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already outstanding")
}

func TestNextMessageDiscardsOrphanResponses(t *testing.T) {
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":42,"result":null}`+"\n"+
			`{"jsonrpc":"2.0","method":"channels/changed"}`+"\n",
		WithMetrics(metrics),
	)

	msg, err := conn.NextMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.MethodChannelsChanged, msg.Method())
	assert.Equal(t, 1, metrics.orphans)
}

func TestNextMessageSkipsBlankLines(t *testing.T) {
	conn, _ := scriptedConn("\n  \n" + `{"jsonrpc":"2.0","method":"channels/changed"}` + "\n")

	msg, err := conn.NextMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.MethodChannelsChanged, msg.Method())
}

func TestNextMessageMalformedLine(t *testing.T) {
	conn, _ := scriptedConn("this is not json\n")

	_, err := conn.NextMessage(context.Background())
	require.Error(t, err)
	assert.True(t, mcplerrors.IsMalformed(err))
	assert.True(t, mcplerrors.IsFatal(err))

	raw, ok := mcplerrors.RawLine(err)
	require.True(t, ok)
	assert.Equal(t, "this is not json", raw)
}

func TestNextMessageUnclassifiableMessage(t *testing.T) {
	// Valid JSON, but neither request, response, nor notification shape.
	conn, _ := scriptedConn(`{"jsonrpc":"2.0","id":3}` + "\n")

	_, err := conn.NextMessage(context.Background())
	require.Error(t, err)
	assert.True(t, mcplerrors.IsMalformed(err))
}

func TestEndOfStreamIsClosed(t *testing.T) {
	conn, _ := scriptedConn("")

	_, err := conn.NextMessage(context.Background())
	require.Error(t, err)
	assert.True(t, mcplerrors.IsClosed(err))
}

func TestFinalLineWithoutDelimiter(t *testing.T) {
	// A peer may flush its last message without a trailing newline before
	// closing; that message must still be delivered.
	conn, _ := scriptedConn(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`)

	result, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))

	_, err = conn.NextMessage(context.Background())
	assert.True(t, mcplerrors.IsClosed(err))
}

func TestClosedConnRejectsOperations(t *testing.T) {
	conn, _ := scriptedConn("")
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "Close should be idempotent")

	_, err := conn.SendRequest(context.Background(), "model/info", nil)
	assert.True(t, mcplerrors.IsClosed(err))

	err = conn.SendNotification(context.Background(), "channels/changed", nil)
	assert.True(t, mcplerrors.IsClosed(err))

	err = conn.SendResponse(context.Background(), protocol.Int64ID(1), nil)
	assert.True(t, mcplerrors.IsClosed(err))

	_, err = conn.NextMessage(context.Background())
	assert.True(t, mcplerrors.IsClosed(err))
}

func TestContextCancellationObserved(t *testing.T) {
	conn, _ := scriptedConn(`{"jsonrpc":"2.0","method":"channels/changed"}` + "\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := conn.SendNotification(ctx, "channels/changed", nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = conn.NextMessage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendResponseEchoesStringID(t *testing.T) {
	conn, out := scriptedConn("")

	err := conn.SendResponse(context.Background(), protocol.StringID("srv-7"), map[string]string{"status": "accepted"})
	require.NoError(t, err)

	lines := sentLines(t, out)
	require.Len(t, lines, 1)
	assert.Equal(t, "srv-7", lines[0]["id"])
}

func TestSendResponseNilResultEncodesNull(t *testing.T) {
	conn, out := scriptedConn("")

	err := conn.SendResponse(context.Background(), protocol.Int64ID(4), nil)
	require.NoError(t, err)

	line := strings.TrimSpace(out.String())
	assert.Contains(t, line, `"result":null`)
}

func TestSendErrorCarriesCodeAndMessage(t *testing.T) {
	conn, out := scriptedConn("")

	err := conn.SendError(context.Background(), protocol.Int64ID(5), protocol.CodeUnknownChannel, "Unknown channel")
	require.NoError(t, err)

	lines := sentLines(t, out)
	require.Len(t, lines, 1)
	errObj, ok := lines[0]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(protocol.CodeUnknownChannel), errObj["code"])
	assert.Equal(t, "Unknown channel", errObj["message"])
}

func TestSendNotificationOmitsID(t *testing.T) {
	conn, out := scriptedConn("")

	err := conn.SendNotification(context.Background(), protocol.MethodFeatureSetsChanged, protocol.FeatureSetsChangedParams{Removed: []string{"calendar"}})
	require.NoError(t, err)

	lines := sentLines(t, out)
	require.Len(t, lines, 1)
	_, hasID := lines[0]["id"]
	assert.False(t, hasID, "notification must not carry an id field")
}

func TestMetricsRecordKinds(t *testing.T) {
	metrics := newFakeMetrics()
	conn, _ := scriptedConn(
		`{"jsonrpc":"2.0","id":1,"result":null}`+"\n",
		WithMetrics(metrics),
	)

	_, err := conn.SendRequest(context.Background(), "model/info", nil)
	require.NoError(t, err)
	require.NoError(t, conn.SendNotification(context.Background(), "channels/changed", nil))

	assert.Equal(t, 1, metrics.sent["request"])
	assert.Equal(t, 1, metrics.sent["notification"])
	assert.Equal(t, 1, metrics.received["response"])
}

// TestDuplexHandshake drives both ends of a pipe through an MCPL session:
// capability negotiation, a server-initiated call back to the host, a
// server notification, and connection teardown.
func TestDuplexHandshake(t *testing.T) {
	hostEnd, serverEnd := net.Pipe()
	host := NewConn(hostEnd, WithLogger(logging.NewNop()))
	server := NewConn(serverEnd, WithLogger(logging.NewNop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		params := protocol.InitializeParams{
			ProtocolVersion: protocol.MCPRevision,
			Capabilities: protocol.InitializeCapabilities{
				Experimental: &protocol.ExperimentalCapabilities{
					Mcpl: protocol.NewMcplCapabilities(protocol.ProtocolVersion),
				},
			},
			ClientInfo: protocol.ImplementationInfo{Name: "test-host", Version: "0.1.0"},
		}
		raw, err := host.SendRequest(gctx, protocol.MethodInitialize, params)
		if err != nil {
			return err
		}

		var result protocol.InitializeResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return err
		}
		mcpl := result.Capabilities.Mcpl()
		require.NotNil(t, mcpl)
		assert.True(t, mcpl.PushEvents)
		assert.Equal(t, protocol.ProtocolVersion, mcpl.Version)

		msg, err := host.NextMessage(gctx)
		if err != nil {
			return err
		}
		require.True(t, msg.IsRequest())
		assert.Equal(t, protocol.MethodPushEvent, msg.Method())
		if err := host.SendResponse(gctx, msg.Request.ID, protocol.PushEventResult{Accepted: true}); err != nil {
			return err
		}

		msg, err = host.NextMessage(gctx)
		if err != nil {
			return err
		}
		assert.False(t, msg.IsRequest())
		assert.Equal(t, protocol.MethodFeatureSetsChanged, msg.Method())

		return host.Close()
	})

	g.Go(func() error {
		msg, err := server.NextMessage(gctx)
		if err != nil {
			return err
		}
		require.True(t, msg.IsRequest())
		assert.Equal(t, protocol.MethodInitialize, msg.Method())

		caps := protocol.NewMcplCapabilities(protocol.ProtocolVersion)
		caps.PushEvents = true
		caps.Rollback = true
		result := protocol.InitializeResult{
			ProtocolVersion: protocol.MCPRevision,
			Capabilities: protocol.InitializeCapabilities{
				Experimental: &protocol.ExperimentalCapabilities{Mcpl: caps},
			},
			ServerInfo: protocol.ImplementationInfo{Name: "test-server", Version: "0.1.0"},
		}
		if err := server.SendResponse(gctx, msg.Request.ID, result); err != nil {
			return err
		}

		raw, err := server.SendRequest(gctx, protocol.MethodPushEvent, protocol.PushEventParams{
			FeatureSet: "calendar",
			EventID:    protocol.NewEventID(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Payload: protocol.PushEventPayload{
				Content: []protocol.ContentBlock{protocol.TextContent("meeting in ten minutes")},
			},
		})
		if err != nil {
			return err
		}
		var pushResult protocol.PushEventResult
		if err := json.Unmarshal(raw, &pushResult); err != nil {
			return err
		}
		assert.True(t, pushResult.Accepted)

		if err := server.SendNotification(gctx, protocol.MethodFeatureSetsChanged, protocol.FeatureSetsChangedParams{
			Added: map[string]protocol.FeatureSetDeclaration{
				"calendar": {Name: "calendar"},
			},
		}); err != nil {
			return err
		}

		_, err = server.NextMessage(gctx)
		if !mcplerrors.IsClosed(err) {
			return err
		}
		return server.Close()
	})

	require.NoError(t, g.Wait())
}

// TestPeerCloseUnblocksRead verifies that tearing down the peer's end of the
// stream surfaces as the closed condition on a blocked read.
func TestPeerCloseUnblocksRead(t *testing.T) {
	hostEnd, serverEnd := net.Pipe()
	host := NewConn(hostEnd, WithLogger(logging.NewNop()))

	done := make(chan error, 1)
	go func() {
		_, err := host.NextMessage(context.Background())
		done <- err
	}()

	require.NoError(t, serverEnd.Close())

	select {
	case err := <-done:
		assert.True(t, mcplerrors.IsClosed(err))
	case <-time.After(5 * time.Second):
		t.Fatal("blocked read was not unblocked by peer close")
	}
}

func TestTransportFailureOnBrokenReader(t *testing.T) {
	conn := NewStreamConn(&failingReader{}, &bytes.Buffer{}, WithLogger(logging.NewNop()))

	_, err := conn.NextMessage(context.Background())
	require.Error(t, err)
	assert.True(t, mcplerrors.IsTransport(err))
	assert.True(t, mcplerrors.IsFatal(err))
}

type failingReader struct{}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
