package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportFailure(t *testing.T) {
	err := TransportFailure("read", io.ErrUnexpectedEOF)

	assert.Equal(t, CodeTransportError, err.Code())
	assert.Equal(t, CategoryTransport, err.Category())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "transport failure during read")

	assert.True(t, IsTransport(err))
	assert.True(t, IsFatal(err))
	assert.False(t, IsRPC(err))
}

func TestConnectionClosed(t *testing.T) {
	err := ConnectionClosed()

	assert.Equal(t, CodeConnectionClosed, err.Code())
	assert.Equal(t, CategoryClosed, err.Category())
	assert.Nil(t, err.Unwrap())

	assert.True(t, IsClosed(err))
	assert.True(t, IsFatal(err))
}

func TestMalformedMessage(t *testing.T) {
	cause := fmt.Errorf("invalid JSON")
	err := MalformedMessage(`{"jsonrpc":`, cause)

	assert.Equal(t, CodeMalformedMessage, err.Code())
	assert.True(t, IsMalformed(err))
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, cause)

	raw, ok := RawLine(err)
	require.True(t, ok)
	assert.Equal(t, `{"jsonrpc":`, raw)

	_, ok = RawLine(ConnectionClosed())
	assert.False(t, ok)
}

func TestRPCFailure(t *testing.T) {
	err := RPCFailure(-32005, "Checkpoint not found", []byte(`{"checkpointId":"cp_1"}`))

	assert.Equal(t, -32005, err.Code(), "peer code passes through verbatim")
	assert.Equal(t, CategoryRPC, err.Category())
	assert.Contains(t, err.Error(), "Checkpoint not found")

	assert.True(t, IsRPC(err))
	assert.False(t, IsFatal(err), "an RPC error leaves the connection usable")

	code, ok := RPCCode(err)
	require.True(t, ok)
	assert.Equal(t, -32005, code)

	message, ok := RPCMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Checkpoint not found", message)

	data, ok := RPCData(err)
	require.True(t, ok)
	assert.JSONEq(t, `{"checkpointId":"cp_1"}`, string(data))
}

func TestRPCFailureWithoutData(t *testing.T) {
	err := RPCFailure(-32601, "Method not found", nil)

	_, ok := RPCData(err)
	assert.False(t, ok)
}

func TestAccessorsRejectForeignErrors(t *testing.T) {
	plain := fmt.Errorf("some error")

	_, ok := RPCCode(plain)
	assert.False(t, ok)
	_, ok = RawLine(plain)
	assert.False(t, ok)
	assert.False(t, IsFatal(plain))
	assert.False(t, IsCategory(plain, CategoryTransport))

	_, ok = AsConnError(plain)
	assert.False(t, ok)
}

func TestAsConnErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", ConnectionClosed())

	ce, ok := AsConnError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CategoryClosed, ce.Category())
	assert.True(t, IsClosed(wrapped))
}
