package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lightwave-link/lightwave-go/pkg/log"
)

// Connection states.
type State int

const (
	// StateDisconnected indicates no connection.
	StateDisconnected State = iota

	// StateConnecting indicates the handshake is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateClosing indicates a graceful close in progress.
	StateClosing
)

// String returns the connection state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Connection errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is a websocket connection to the service. All inbound
// frames are delivered through the handler from a single goroutine.
type Connection struct {
	config   Config
	handler  Handler
	id       string
	protocol log.Logger

	conn *websocket.Conn

	state     atomic.Int32
	closeOnce sync.Once
	closeDone chan struct{}

	writeMu sync.Mutex
	cancel  context.CancelFunc
}

// Dial establishes a websocket connection and starts the read loop.
func Dial(ctx context.Context, config Config, handler Handler) (*Connection, error) {
	config.applyDefaults()

	c := &Connection{
		config:    config,
		handler:   handler,
		id:        uuid.NewString(),
		protocol:  config.Protocol,
		closeDone: make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	c.notifyStateChange(StateDisconnected, StateConnecting)

	dialer := websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
		TLSClientConfig:  config.TLSConfig,
		Proxy:            http.ProxyFromEnvironment,
	}
	if config.ProxyURL != "" {
		proxyURL, err := url.Parse(config.ProxyURL)
		if err != nil {
			c.state.Store(int32(StateDisconnected))
			c.notifyStateChange(StateConnecting, StateDisconnected)
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	conn, resp, err := dialer.DialContext(ctx, config.URL, config.Header)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		c.notifyStateChange(StateConnecting, StateDisconnected)
		if resp != nil {
			return nil, fmt.Errorf("dial %s failed: %w (HTTP %d)", config.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s failed: %w", config.URL, err)
	}

	conn.SetReadLimit(config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(config.PingInterval + config.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.PingInterval + config.PongTimeout))
	})

	c.conn = conn
	c.state.Store(int32(StateConnected))
	c.notifyStateChange(StateConnecting, StateConnected)

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.readLoop()
	go c.pingLoop(loopCtx)

	return c, nil
}

// ID returns the connection's unique id, used to correlate log events.
func (c *Connection) ID() string {
	return c.id
}

// State returns the current connection state.
func (c *Connection) State() State {
	return State(c.state.Load())
}

// Send writes one text frame. Safe for concurrent use; writes are
// serialized.
func (c *Connection) Send(data []byte) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	c.protocol.Log(log.NewFrameEvent(c.id, log.DirectionOut, len(data)))
	return nil
}

// Close performs the websocket close handshake and tears the connection
// down. Safe to call more than once.
func (c *Connection) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		oldState := c.State()
		if oldState == StateDisconnected {
			return
		}
		c.state.Store(int32(StateClosing))
		c.notifyStateChange(oldState, StateClosing)

		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.config.WriteTimeout))
		c.writeMu.Unlock()

		// Wait for the peer's close frame to end the read loop.
		select {
		case <-c.closeDone:
		case <-time.After(c.config.CloseTimeout):
			closeErr = fmt.Errorf("close handshake timed out after %s", c.config.CloseTimeout)
		}

		c.teardown(StateClosing)
	})

	return closeErr
}

// forceClose tears the connection down without a close handshake.
func (c *Connection) forceClose() {
	c.closeOnce.Do(func() {
		c.teardown(c.State())
	})
}

func (c *Connection) teardown(oldState State) {
	if c.cancel != nil {
		c.cancel()
	}
	c.conn.Close()
	c.state.Store(int32(StateDisconnected))
	if oldState != StateDisconnected {
		c.notifyStateChange(oldState, StateDisconnected)
	}
}

// readLoop delivers inbound frames to the handler. It is the only
// reader of the connection, which is what guarantees in-order dispatch.
func (c *Connection) readLoop() {
	defer close(c.closeDone)

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.State() == StateClosing {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				// Peer-initiated close.
				go c.forceClose()
				return
			}
			c.protocol.Log(log.NewErrorEvent(c.id, log.LayerTransport, err, "read"))
			c.handler.OnError(fmt.Errorf("read failed: %w", err))
			go c.forceClose()
			return
		}

		// The service speaks JSON over text frames only.
		if msgType != websocket.TextMessage {
			continue
		}

		c.protocol.Log(log.NewFrameEvent(c.id, log.DirectionIn, len(data)))
		c.handler.OnMessage(data)
	}
}

// pingLoop sends keep-alive pings. A missing pong trips the read
// deadline, which surfaces as a read error and closes the connection.
func (c *Connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(c.config.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil && c.State() == StateConnected {
				c.handler.OnError(fmt.Errorf("ping failed: %w", err))
				go c.forceClose()
				return
			}
		}
	}
}

// notifyStateChange notifies the handler of state changes.
func (c *Connection) notifyStateChange(oldState, newState State) {
	c.protocol.Log(log.NewStateEvent(c.id, oldState.String(), newState.String(), ""))
	if c.handler != nil {
		c.handler.OnStateChange(oldState, newState)
	}
}
