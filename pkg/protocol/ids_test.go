package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedIDs(t *testing.T) {
	evt := NewEventID()
	assert.True(t, strings.HasPrefix(evt, "evt_"))
	assert.NotEqual(t, evt, NewEventID())

	assert.True(t, strings.HasPrefix(NewInferenceID(), "inf_"))
	assert.True(t, strings.HasPrefix(NewConversationID(), "conv_"))
}
