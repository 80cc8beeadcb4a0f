package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lightwave-link/lightwave-go/pkg/interaction"
	"github.com/lightwave-link/lightwave-go/pkg/log"
	"github.com/lightwave-link/lightwave-go/pkg/model"
	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// DefaultRequestTimeout bounds every request that does not carry its own
// context deadline. The upstream service never guarantees a response;
// without a deadline a lost response would leak its pending entry and
// suspend the caller forever.
const DefaultRequestTimeout = 10 * time.Second

// Session errors.
var (
	// ErrRequestTimeout means no correlating response arrived before the
	// request deadline. Distinct from protocol failures: the request may
	// still be applied by the service.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrSessionClosed means the session was closed while the request
	// was outstanding.
	ErrSessionClosed = errors.New("session closed")
)

// Sender is the outbound half of the transport boundary.
type Sender interface {
	// Send transmits one text frame. Implementations must be safe for
	// concurrent use.
	Send(data []byte) error
}

// Config configures a Session. Sender is required; everything else has a
// sensible default.
type Config struct {
	// Sender transmits outbound frames.
	Sender Sender

	// Sequence supplies transaction and item ids. Defaults to a fresh
	// sequence with a random sender id.
	Sequence *wire.Sequence

	// Store is the entity mirror. Defaults to a new empty store.
	Store *model.Store

	// ClientDeviceID is the stable per-process identifier presented
	// during authentication. Defaults to a random UUID.
	ClientDeviceID string

	// RequestTimeout is the per-request deadline. Defaults to
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Logger receives operational logs. Defaults to discarding.
	Logger *slog.Logger

	// Protocol receives protocol capture events. Defaults to none.
	Protocol log.Logger

	// ConnID is stamped on capture events. Defaults to a random UUID.
	ConnID string
}

// Session is the typed command facade over one connection.
type Session struct {
	sender   Sender
	seq      *wire.Sequence
	registry *interaction.Registry
	dispatch *interaction.Dispatcher
	store    *model.Store
	logger   *slog.Logger
	protocol log.Logger
	timeout  time.Duration
	connID   string

	clientDeviceID string

	mu      sync.RWMutex
	onEvent func(model.FeatureEvent)
	closed  bool
}

// New creates a session over the given transport sender.
func New(cfg Config) *Session {
	if cfg.Sequence == nil {
		cfg.Sequence = wire.NewSequence()
	}
	if cfg.Store == nil {
		cfg.Store = model.NewStore()
	}
	if cfg.ClientDeviceID == "" {
		cfg.ClientDeviceID = uuid.NewString()
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Protocol == nil {
		cfg.Protocol = log.NoopLogger{}
	}
	if cfg.ConnID == "" {
		cfg.ConnID = uuid.NewString()
	}

	registry := interaction.NewRegistry()
	dispatch := interaction.NewDispatcher(registry, cfg.Logger)
	dispatch.SetProtocolLogger(cfg.Protocol, cfg.ConnID)

	s := &Session{
		sender:         cfg.Sender,
		seq:            cfg.Sequence,
		registry:       registry,
		dispatch:       dispatch,
		store:          cfg.Store,
		logger:         cfg.Logger,
		protocol:       cfg.Protocol,
		timeout:        cfg.RequestTimeout,
		connID:         cfg.ConnID,
		clientDeviceID: cfg.ClientDeviceID,
	}

	dispatch.SetEventHandler(s.handleEvent)
	dispatch.SetGroupUpdateHandler(s.handleGroupUpdate)

	return s
}

// Store returns the entity mirror fed by this session.
func (s *Session) Store() *model.Store {
	return s.store
}

// Stats returns the dispatcher's counters.
func (s *Session) Stats() interaction.Stats {
	return s.dispatch.Stats()
}

// HandleFrame feeds one raw inbound frame into the session. It is the
// transport's inbound callback and must be invoked by a single goroutine
// in arrival order.
func (s *Session) HandleFrame(data []byte) {
	s.dispatch.HandleFrame(data)
}

// OnEvent registers a callback for surfaced feature events. The callback
// runs on the dispatch goroutine and must not issue requests.
func (s *Session) OnEvent(fn func(model.FeatureEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// Close fails all outstanding requests and rejects new ones. It does not
// close the underlying transport.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if n := s.registry.CancelAll(); n > 0 {
		s.logger.Debug("cancelled outstanding requests on close", "count", n)
	}
	return nil
}

// roundTrip sends a request envelope and suspends until the correlating
// response arrives, the context is done, or the request deadline expires.
// Expiry removes the pending entry so the registry cannot leak.
func (s *Session) roundTrip(ctx context.Context, msg *wire.Message) (*wire.Message, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrSessionClosed
	}

	done, err := s.registry.Register(msg.TransactionID, msg)
	if err != nil {
		return nil, err
	}

	data, err := wire.EncodeMessage(msg)
	if err != nil {
		s.registry.Cancel(msg.TransactionID)
		return nil, err
	}

	s.protocol.Log(log.NewMessageEvent(s.connID, log.DirectionOut, msg))
	if err := s.sender.Send(data); err != nil {
		s.registry.Cancel(msg.TransactionID)
		return nil, fmt.Errorf("failed to send request %d: %w", msg.TransactionID, err)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-done:
		if !ok {
			return nil, ErrSessionClosed
		}
		return resp, nil
	case <-ctx.Done():
		return s.loseRace(msg.TransactionID, done, ctx.Err())
	case <-timer.C:
		return s.loseRace(msg.TransactionID, done, ErrRequestTimeout)
	}
}

// loseRace resolves the race between a deadline and a response arriving
// at the same instant. If the cancel fails the dispatcher already
// removed the entry, so the buffered response wins.
func (s *Session) loseRace(transactionID int, done <-chan *wire.Message, cause error) (*wire.Message, error) {
	if !s.registry.Cancel(transactionID) {
		if resp, ok := <-done; ok {
			return resp, nil
		}
	}
	s.protocol.Log(log.NewErrorEvent(s.connID, log.LayerSession, cause, fmt.Sprintf("request %d", transactionID)))
	return nil, cause
}

// newItem builds an item on this session's sequence.
func (s *Session) newItem(payload any) (wire.Item, error) {
	return wire.NewItem(s.seq, payload)
}

// itemFailure converts a failed response item into an operation error.
func itemFailure(operation string, item wire.Item) error {
	if item.Error != nil {
		return fmt.Errorf("%s failed: %w", operation, item.Error)
	}
	return fmt.Errorf("%s failed: item %d reported no success", operation, item.ItemID)
}
