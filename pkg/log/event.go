package log

import (
	"time"

	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// Event is one protocol capture record. CBOR encoding uses integer keys
// for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the connection the event belongs to.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the traffic that produced the event.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// Type-specific payload (exactly one is set).
	Frame       *FrameRecord       `cbor:"10,keyasint,omitempty"`
	Message     *MessageRecord     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeRecord `cbor:"12,keyasint,omitempty"`
	Anomaly     *AnomalyRecord     `cbor:"13,keyasint,omitempty"`
	Error       *ErrorRecord       `cbor:"14,keyasint,omitempty"`
}

// Direction indicates message flow.
type Direction uint8

const (
	// DirectionIn is service-to-client traffic.
	DirectionIn Direction = 0
	// DirectionOut is client-to-service traffic.
	DirectionOut Direction = 1
	// DirectionNone is used for events without a flow direction.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the websocket frame layer.
	LayerTransport Layer = 0
	// LayerWire is the envelope codec and dispatch layer.
	LayerWire Layer = 1
	// LayerSession is the command facade layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage is a protocol envelope.
	CategoryMessage Category = 0
	// CategoryState is a connection state change.
	CategoryState Category = 1
	// CategoryAnomaly is a dropped or misrouted inbound message.
	CategoryAnomaly Category = 2
	// CategoryError is an error at any layer.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryAnomaly:
		return "ANOMALY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameRecord captures a raw websocket frame at the transport layer.
type FrameRecord struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Truncated indicates the frame exceeded the capture limit.
	Truncated bool `cbor:"2,keyasint,omitempty"`
}

// MessageRecord captures a decoded envelope.
type MessageRecord struct {
	Class         string `cbor:"1,keyasint"`
	Operation     string `cbor:"2,keyasint"`
	Direction     string `cbor:"3,keyasint"`
	TransactionID int    `cbor:"4,keyasint"`
	ItemCount     int    `cbor:"5,keyasint"`

	// Success reflects the first item's success flag on responses.
	Success *bool `cbor:"6,keyasint,omitempty"`
}

// StateChangeRecord captures a connection state transition.
type StateChangeRecord struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`
	Reason   string `cbor:"3,keyasint,omitempty"`
}

// AnomalyRecord captures inbound traffic the dispatcher had to drop.
type AnomalyRecord struct {
	Kind   AnomalyKind `cbor:"1,keyasint"`
	Detail string      `cbor:"2,keyasint,omitempty"`
}

// AnomalyKind classifies dispatch anomalies.
type AnomalyKind uint8

const (
	// AnomalyMalformedFrame is an inbound frame that failed to decode.
	AnomalyMalformedFrame AnomalyKind = 0
	// AnomalyCorrelationMiss is a feature response no pending request
	// owns (or one that more than one pending request claims).
	AnomalyCorrelationMiss AnomalyKind = 1
	// AnomalyStaleResponse is a response for a transaction id that is not
	// (or no longer) registered.
	AnomalyStaleResponse AnomalyKind = 2
	// AnomalyUnexpectedMessage is an unrecognized notification.
	AnomalyUnexpectedMessage AnomalyKind = 3
)

// String returns the anomaly kind name.
func (k AnomalyKind) String() string {
	switch k {
	case AnomalyMalformedFrame:
		return "MALFORMED_FRAME"
	case AnomalyCorrelationMiss:
		return "CORRELATION_MISS"
	case AnomalyStaleResponse:
		return "STALE_RESPONSE"
	case AnomalyUnexpectedMessage:
		return "UNEXPECTED_MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// ErrorRecord captures errors at any layer.
type ErrorRecord struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a transport-layer frame event.
func NewFrameEvent(connID string, dir Direction, size int) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame:        &FrameRecord{Size: size},
	}
}

// NewMessageEvent builds a wire-layer event from a decoded envelope.
func NewMessageEvent(connID string, dir Direction, msg *wire.Message) Event {
	record := &MessageRecord{
		Class:         msg.Class.String(),
		Operation:     msg.Operation.String(),
		Direction:     msg.Direction.String(),
		TransactionID: msg.TransactionID,
		ItemCount:     len(msg.Items),
	}
	if msg.Direction == wire.DirectionResponse && len(msg.Items) > 0 {
		record.Success = msg.Items[0].Success
	}
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Message:      record,
	}
}

// NewStateEvent builds a connection state change event.
func NewStateEvent(connID, oldState, newState, reason string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    DirectionNone,
		Layer:        LayerTransport,
		Category:     CategoryState,
		StateChange: &StateChangeRecord{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewAnomalyEvent builds a dispatch anomaly event.
func NewAnomalyEvent(connID string, kind AnomalyKind, detail string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryAnomaly,
		Anomaly:      &AnomalyRecord{Kind: kind, Detail: detail},
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(connID string, layer Layer, err error, context string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    DirectionNone,
		Layer:        layer,
		Category:     CategoryError,
		Error:        &ErrorRecord{Layer: layer, Message: err.Error(), Context: context},
	}
}
