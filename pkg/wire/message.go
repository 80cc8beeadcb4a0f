package wire

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol version sent on every request envelope.
const Version = 1

// Message is one JSON envelope exchanged over the websocket.
//
// JSON encoding:
//
//	{
//	  "class": "feature",
//	  "direction": "request",
//	  "operation": "write",
//	  "senderId": "4c2e...",
//	  "transactionId": 17,
//	  "version": 1,
//	  "items": [...]
//	}
type Message struct {
	Class         Class     `json:"class"`
	Direction     Direction `json:"direction"`
	Operation     Operation `json:"operation"`
	SenderID      string    `json:"senderId"`
	TransactionID int       `json:"transactionId"`
	Version       int       `json:"version"`
	Items         []Item    `json:"items"`
}

// NewRequest builds a request envelope stamped with the sequence's sender
// id and its next transaction id.
func NewRequest(seq *Sequence, class Class, op Operation, items []Item) *Message {
	return &Message{
		Class:         class,
		Direction:     DirectionRequest,
		Operation:     op,
		SenderID:      seq.SenderID(),
		TransactionID: seq.NextTransaction(),
		Version:       Version,
		Items:         items,
	}
}

// IsNotification returns true for unsolicited envelopes.
func (m *Message) IsNotification() bool {
	return m.Direction == DirectionNotification
}

// NeedsItemCorrelation reports whether this envelope belongs to the
// message category whose transactionId is unreliable: the service emits
// feature read/write responses without the original request's transaction
// id, so they must be matched by item id instead.
func (m *Message) NeedsItemCorrelation() bool {
	return m.Class == ClassFeature && (m.Operation == OpRead || m.Operation == OpWrite)
}

// Item is one unit of work or result within an envelope.
type Item struct {
	ItemID  int             `json:"itemId"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Error   *ItemError      `json:"error,omitempty"`
}

// Succeeded returns true only when the service reported explicit success.
// An absent success flag counts as failure.
func (it *Item) Succeeded() bool {
	return it.Success != nil && *it.Success
}

// DecodePayload decodes the item payload into v.
func (it *Item) DecodePayload(v any) error {
	if len(it.Payload) == 0 {
		return fmt.Errorf("item %d has no payload", it.ItemID)
	}
	if err := json.Unmarshal(it.Payload, v); err != nil {
		return fmt.Errorf("failed to decode item %d payload: %w", it.ItemID, err)
	}
	return nil
}

// ItemError is the per-item failure detail reported by the service.
type ItemError struct {
	Code    int    `json:"code"`
	Group   bool   `json:"group"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Error makes ItemError usable as a Go error.
func (e *ItemError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("service error %d", e.Code)
}

// EncodeMessage encodes an envelope for the wire.
func EncodeMessage(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// DecodeMessage decodes a raw inbound frame into an envelope.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return &m, nil
}
