package queue

import "encoding/json"

// QueueOrderNotifications is the single queue the order workflow publishes
// to and the notification service consumes from.
const QueueOrderNotifications = "order_notifications"

// EventType discriminates the payload carried by an Envelope.
type EventType string

const (
	EventOrderPlaced        EventType = "ORDER_PLACED"
	EventOrderPaymentFailed EventType = "ORDER_PAYMENT_FAILED"
)

// Envelope is the wire format for every queue message: a typed wrapper
// around an opaque JSON payload. Consumers switch on Type and decode Data
// into the matching struct; unknown types must be dropped, never crash the
// consumer.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope wraps payload as the Data of a typed envelope.
func NewEnvelope(eventType EventType, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Data: data}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
