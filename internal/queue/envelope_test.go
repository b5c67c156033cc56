package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeWireFormat(t *testing.T) {
	env, err := NewEnvelope(EventOrderPaymentFailed, map[string]string{"userId": "u1", "reason": "declined"})
	require.NoError(t, err)

	wire, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ORDER_PAYMENT_FAILED","data":{"userId":"u1","reason":"declined"}}`, string(wire))

	var decoded Envelope
	require.NoError(t, json.Unmarshal(wire, &decoded))
	assert.Equal(t, EventOrderPaymentFailed, decoded.Type)

	var payload struct {
		UserID string `json:"userId"`
		Reason string `json:"reason"`
	}
	require.NoError(t, decoded.Decode(&payload))
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "declined", payload.Reason)
}
