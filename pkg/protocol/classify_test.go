package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    MessageType
		wantErr bool
	}{
		{
			name: "request",
			line: `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
			want: MessageRequest,
		},
		{
			name: "request with string id",
			line: `{"jsonrpc":"2.0","id":"srv-1","method":"push/event"}`,
			want: MessageRequest,
		},
		{
			name: "success response",
			line: `{"jsonrpc":"2.0","id":1,"result":{}}`,
			want: MessageResponse,
		},
		{
			name: "null result response",
			line: `{"jsonrpc":"2.0","id":1,"result":null}`,
			want: MessageResponse,
		},
		{
			name: "error response",
			line: `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`,
			want: MessageResponse,
		},
		{
			name: "notification",
			line: `{"jsonrpc":"2.0","method":"featureSets/changed"}`,
			want: MessageNotification,
		},
		{
			name: "null id notification",
			line: `{"jsonrpc":"2.0","id":null,"method":"featureSets/changed"}`,
			want: MessageNotification,
		},
		{
			name:    "id without method or result",
			line:    `{"jsonrpc":"2.0","id":1}`,
			wantErr: true,
		},
		{
			name:    "empty object",
			line:    `{}`,
			wantErr: true,
		},
		{
			name:    "response without id",
			line:    `{"jsonrpc":"2.0","result":{}}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			line:    `{"jsonrpc":`,
			wantErr: true,
		},
		{
			name:    "JSON array",
			line:    `[1,2,3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify([]byte(tt.line))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRequestBeatsResponse(t *testing.T) {
	// A message carrying id, method, and result classifies as a request;
	// the id+method rule wins.
	got, err := Classify([]byte(`{"jsonrpc":"2.0","id":1,"method":"x","result":{}}`))
	require.NoError(t, err)
	assert.Equal(t, MessageRequest, got)
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "request", MessageRequest.String())
	assert.Equal(t, "response", MessageResponse.String())
	assert.Equal(t, "notification", MessageNotification.String())
	assert.Equal(t, "unknown", MessageType(0).String())
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":5,"method":"state/rollback","params":{"checkpointId":"cp_1"}}`))
	require.NoError(t, err)
	assert.Equal(t, Int64ID(5), req.ID)
	assert.Equal(t, "state/rollback", req.Method)
	assert.JSONEq(t, `{"checkpointId":"cp_1"}`, string(req.Params))

	_, err = ParseRequest([]byte(`{"jsonrpc":"2.0","id":5}`))
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":5,"result":{"ok":true}}`))
	require.NoError(t, err)
	assert.Equal(t, Int64ID(5), resp.ID)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Result))
	assert.Nil(t, resp.Error)

	resp, err = ParseResponse([]byte(`{"jsonrpc":"2.0","id":5,"error":{"code":-32005,"message":"Checkpoint not found"}}`))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeCheckpointNotFound, resp.Error.Code)
	assert.Equal(t, "Checkpoint not found", resp.Error.Message)

	_, err = ParseResponse([]byte(`{"jsonrpc":"2.0","id":5,"result":{},"error":{"code":1,"message":"x"}}`))
	assert.ErrorContains(t, err, "both")

	_, err = ParseResponse([]byte(`{"jsonrpc":"2.0","id":5}`))
	assert.ErrorContains(t, err, "neither")
}

func TestParseNotification(t *testing.T) {
	notif, err := ParseNotification([]byte(`{"jsonrpc":"2.0","method":"channels/changed","params":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "channels/changed", notif.Method)

	_, err = ParseNotification([]byte(`{"jsonrpc":"2.0"}`))
	assert.Error(t, err)
}
