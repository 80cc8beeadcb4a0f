package interaction

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/lightwave-link/lightwave-go/pkg/log"
	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// Dispatcher classifies every inbound envelope and routes it: pending
// request completion, feature correlation workaround, notification
// handling, or anomaly logging. No inbound frame is ever fatal.
//
// HandleFrame must be driven by a single goroutine (the transport read
// loop); that is what serializes dispatch and preserves arrival order.
// The notification handlers run on that goroutine, so a handler that
// itself issues requests must hand off to another goroutine or the
// dispatch loop deadlocks waiting for its own response.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger

	// Optional protocol capture.
	protocol log.Logger
	connID   string

	onGroupUpdate func()
	onEvent       func(*wire.Message)

	resolved         atomic.Uint64
	malformedFrames  atomic.Uint64
	correlationMiss  atomic.Uint64
	unexpectedFrames atomic.Uint64
	eventsRouted     atomic.Uint64
	groupUpdates     atomic.Uint64
}

// NewDispatcher creates a dispatcher over the given registry. A nil
// logger discards operational logs.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger,
		protocol: log.NoopLogger{},
	}
}

// SetGroupUpdateHandler registers the callback for group/update
// notifications. The callback must not block; the usual implementation
// launches the root-group re-read on its own goroutine.
func (d *Dispatcher) SetGroupUpdateHandler(fn func()) {
	d.onGroupUpdate = fn
}

// SetEventHandler registers the callback for event notifications. It runs
// on the dispatch goroutine, keeping event ordering intact.
func (d *Dispatcher) SetEventHandler(fn func(*wire.Message)) {
	d.onEvent = fn
}

// SetProtocolLogger attaches a protocol capture logger. The connection id
// is stamped on every captured event.
func (d *Dispatcher) SetProtocolLogger(protocol log.Logger, connID string) {
	if protocol == nil {
		protocol = log.NoopLogger{}
	}
	d.protocol = protocol
	d.connID = connID
}

// HandleFrame processes one raw inbound frame. It never panics and never
// returns an error: malformed frames are swallowed, unroutable envelopes
// are logged and dropped.
func (d *Dispatcher) HandleFrame(data []byte) {
	msg, err := wire.DecodeMessage(data)
	if err != nil {
		// Malformed frames from the transport are not fatal to the
		// connection.
		d.malformedFrames.Add(1)
		d.logger.Debug("dropping malformed frame", "error", err, "bytes", len(data))
		d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyMalformedFrame, err.Error()))
		return
	}

	// Direction is a closed set; an envelope without a recognizable one
	// cannot be routed at all.
	if !msg.Direction.IsValid() {
		d.malformedFrames.Add(1)
		d.logger.Debug("dropping frame with unknown direction", "direction", msg.Direction)
		d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyMalformedFrame,
			"unknown direction "+msg.Direction.String()))
		return
	}

	d.protocol.Log(log.NewMessageEvent(d.connID, log.DirectionIn, msg))

	if msg.NeedsItemCorrelation() {
		d.resolveByItem(msg)
		return
	}

	if d.registry.Resolve(msg.TransactionID, msg) {
		d.resolved.Add(1)
		return
	}

	if msg.IsNotification() {
		d.routeNotification(msg)
		return
	}

	// A response for an unregistered transaction id: either the entry was
	// already resolved (stale duplicate) or never existed. Dropped either
	// way.
	d.unexpectedFrames.Add(1)
	d.logger.Warn("dropping unexpected response",
		"class", msg.Class, "operation", msg.Operation, "transactionId", msg.TransactionID)
	d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyStaleResponse, msg.Operation.String()))
}

// resolveByItem applies the feature correlation workaround: the inbound
// transaction id is unreliable, so the response is matched to a pending
// request through the item id of its first item.
func (d *Dispatcher) resolveByItem(msg *wire.Message) {
	if len(msg.Items) == 0 {
		d.correlationMiss.Add(1)
		d.logger.Warn("feature response without items, cannot correlate",
			"operation", msg.Operation, "transactionId", msg.TransactionID)
		d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyCorrelationMiss, "no items"))
		return
	}

	itemID := msg.Items[0].ItemID
	transactionID, err := d.registry.ResolveByItem(itemID, msg)
	if err != nil {
		d.correlationMiss.Add(1)
		switch {
		case errors.Is(err, ErrAmbiguousItem):
			// Completing an arbitrary waiter is worse than completing
			// none; every candidate caller times out instead.
			d.logger.Error("ambiguous feature correlation", "itemId", itemID)
		default:
			d.logger.Warn("feature response matches no pending request",
				"itemId", itemID, "operation", msg.Operation)
		}
		d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyCorrelationMiss, err.Error()))
		return
	}

	d.resolved.Add(1)
	d.logger.Debug("correlated feature response by item id",
		"itemId", itemID, "transactionId", transactionID)
}

func (d *Dispatcher) routeNotification(msg *wire.Message) {
	switch {
	case msg.Class == wire.ClassGroup && msg.Operation == wire.OpUpdate:
		d.groupUpdates.Add(1)
		if d.onGroupUpdate != nil {
			d.onGroupUpdate()
		}
	case msg.Operation == wire.OpEvent:
		d.eventsRouted.Add(1)
		if d.onEvent != nil {
			d.onEvent(msg)
		}
	default:
		d.unexpectedFrames.Add(1)
		d.logger.Warn("dropping unrecognized notification",
			"class", msg.Class, "operation", msg.Operation)
		d.protocol.Log(log.NewAnomalyEvent(d.connID, log.AnomalyUnexpectedMessage, msg.Operation.String()))
	}
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Resolved         uint64
	MalformedFrames  uint64
	CorrelationMiss  uint64
	UnexpectedFrames uint64
	EventsRouted     uint64
	GroupUpdates     uint64
}

// Stats returns the current counter values.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Resolved:         d.resolved.Load(),
		MalformedFrames:  d.malformedFrames.Load(),
		CorrelationMiss:  d.correlationMiss.Load(),
		UnexpectedFrames: d.unexpectedFrames.Load(),
		EventsRouted:     d.eventsRouted.Load(),
		GroupUpdates:     d.groupUpdates.Load(),
	}
}
