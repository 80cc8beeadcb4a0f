package transport

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/lightwave-link/lightwave-go/pkg/log"
)

// Default connection parameters.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultPongTimeout      = 10 * time.Second
	DefaultCloseTimeout     = 5 * time.Second
	DefaultMaxMessageSize   = 512 * 1024
)

// Config configures a websocket connection.
type Config struct {
	// URL is the websocket endpoint (ws:// or wss://).
	URL string

	// ProxyURL routes the connection through an HTTP proxy when set.
	ProxyURL string

	// Header carries extra HTTP headers for the handshake.
	Header http.Header

	// TLSConfig overrides the TLS client configuration (nil = default).
	TLSConfig *tls.Config

	// HandshakeTimeout bounds the websocket handshake (default: 10s).
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound write (default: 10s).
	WriteTimeout time.Duration

	// PingInterval is the keep-alive ping period (default: 30s).
	PingInterval time.Duration

	// PongTimeout is how long after a ping the pong must arrive before
	// the connection is considered dead (default: 10s).
	PongTimeout time.Duration

	// CloseTimeout bounds the graceful close handshake (default: 5s).
	CloseTimeout time.Duration

	// MaxMessageSize is the maximum inbound frame size (default: 512KB).
	MaxMessageSize int64

	// Protocol receives transport-layer capture events: frame sizes,
	// state changes, read failures. Defaults to none.
	Protocol log.Logger
}

// DefaultConfig returns the default connection configuration for the
// given endpoint.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		PingInterval:     DefaultPingInterval,
		PongTimeout:      DefaultPongTimeout,
		CloseTimeout:     DefaultCloseTimeout,
		MaxMessageSize:   DefaultMaxMessageSize,
	}
}

func (c *Config) applyDefaults() {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = DefaultPongTimeout
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = DefaultCloseTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Protocol == nil {
		c.Protocol = log.NoopLogger{}
	}
}

// Handler handles connection events. OnMessage is called from the read
// loop, one frame at a time, in arrival order; a handler that blocks
// stalls the whole connection.
type Handler interface {
	// OnMessage is called for every inbound text frame.
	OnMessage(data []byte)

	// OnStateChange is called when the connection state changes.
	OnStateChange(oldState, newState State)

	// OnError is called when the connection fails.
	OnError(err error)
}
