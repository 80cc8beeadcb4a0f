// Command lwctl is a reference Lightwave Link Plus client.
//
// It exchanges account credentials for a bearer token, opens the
// websocket session, mirrors the account's devices and features, and
// optionally drops into an interactive shell for reading and writing
// feature values.
//
// Usage:
//
//	lwctl [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-email string      Account email
//	-password string   Account password
//	-auth-url string   Token endpoint override
//	-ws-url string     Websocket endpoint override
//	-proxy string      HTTP proxy URL for the websocket connection
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-capture string    Protocol capture file (CBOR event stream)
//	-state string      Mirror snapshot file (loaded at startup, saved on exit)
//	-interactive       Enable interactive command mode
//
// Examples:
//
//	# Mirror the account and follow events
//	lwctl -email me@example.com -password secret
//
//	# Interactive mode with protocol capture
//	lwctl -config lwctl.yaml -interactive -capture session.cbor
//
// Interactive Commands:
//
//	devices                  - List devices
//	features <device-name>   - List a device's features
//	read <feature-id>        - Read a feature value
//	write <feature-id> <v>   - Write a feature value
//	on <device-name>         - Switch a device on
//	off <device-name>        - Switch a device off
//	dim <device-name> <pct>  - Set a dim level
//	events                   - Toggle live event display
//	quit                     - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/lightwave-link/lightwave-go/cmd/lwctl/interactive"
	"github.com/lightwave-link/lightwave-go/pkg/auth"
	"github.com/lightwave-link/lightwave-go/pkg/log"
	"github.com/lightwave-link/lightwave-go/pkg/model"
	"github.com/lightwave-link/lightwave-go/pkg/persistence"
	"github.com/lightwave-link/lightwave-go/pkg/session"
	"github.com/lightwave-link/lightwave-go/pkg/transport"
)

// DefaultWebsocketURL is the public Link Plus websocket endpoint.
const DefaultWebsocketURL = "wss://v1-linkplus-app.lightwaverf.com"

// Config holds the client configuration. File values are overridden by
// flags.
type Config struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	AuthURL      string `yaml:"authUrl"`
	WebsocketURL string `yaml:"websocketUrl"`
	Proxy        string `yaml:"proxy"`
	LogLevel     string `yaml:"logLevel"`
	Capture      string `yaml:"capture"`
	StateFile    string `yaml:"stateFile"`
	Interactive  bool   `yaml:"interactive"`
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// sessionHandler bridges the transport callbacks into the session. The
// session is attached after the dial returns, but the read loop starts
// delivering frames immediately, so the reference is mutex-guarded and
// frames arriving before the attach are dropped: nothing can claim them
// yet, and the post-authenticate mirror read covers anything missed.
type sessionHandler struct {
	mu     sync.Mutex
	sess   *session.Session
	logger *slog.Logger
}

func (h *sessionHandler) attach(sess *session.Session) {
	h.mu.Lock()
	h.sess = sess
	h.mu.Unlock()
}

func (h *sessionHandler) OnMessage(data []byte) {
	h.mu.Lock()
	sess := h.sess
	h.mu.Unlock()
	if sess == nil {
		h.logger.Debug("dropping frame received before session attach", "bytes", len(data))
		return
	}
	sess.HandleFrame(data)
}

func (h *sessionHandler) OnStateChange(oldState, newState transport.State) {
	h.logger.Debug("connection state changed", "from", oldState.String(), "to", newState.String())
}

func (h *sessionHandler) OnError(err error) {
	h.logger.Error("connection failed", "error", err)
}

func main() {
	var (
		configFile      string
		flagConfig      Config
		interactiveMode bool
	)
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flagConfig.Email, "email", "", "Account email")
	flag.StringVar(&flagConfig.Password, "password", "", "Account password")
	flag.StringVar(&flagConfig.AuthURL, "auth-url", "", "Token endpoint override")
	flag.StringVar(&flagConfig.WebsocketURL, "ws-url", "", "Websocket endpoint override")
	flag.StringVar(&flagConfig.Proxy, "proxy", "", "HTTP proxy URL for the websocket connection")
	flag.StringVar(&flagConfig.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flagConfig.Capture, "capture", "", "Protocol capture file (CBOR event stream)")
	flag.StringVar(&flagConfig.StateFile, "state", "", "Mirror snapshot file")
	flag.BoolVar(&interactiveMode, "interactive", false, "Enable interactive command mode")
	flag.Parse()

	if err := run(configFile, flagConfig, interactiveMode); err != nil {
		fmt.Fprintln(os.Stderr, "lwctl:", err)
		os.Exit(1)
	}
}

func run(configFile string, flagConfig Config, interactiveMode bool) error {
	var config Config
	if configFile != "" {
		if err := loadConfigFile(configFile, &config); err != nil {
			return err
		}
	}
	mergeConfig(&config, flagConfig)
	config.Interactive = config.Interactive || interactiveMode

	if config.Email == "" || config.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	if config.WebsocketURL == "" {
		config.WebsocketURL = DefaultWebsocketURL
	}

	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	protocol, closeCapture, err := buildProtocolLogger(config.Capture, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Token exchange first; a failure here is fatal.
	tokenClient := auth.NewClient(auth.Config{Endpoint: config.AuthURL})
	token, err := tokenClient.RequestToken(ctx, config.Email, config.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	logger.Info("obtained access token")

	// Dial, then wire the frames into the session.
	handler := &sessionHandler{logger: logger}
	transportConfig := transport.DefaultConfig(config.WebsocketURL)
	transportConfig.ProxyURL = config.Proxy
	transportConfig.Protocol = protocol
	conn, err := transport.Dial(ctx, transportConfig, handler)
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := session.New(session.Config{
		Sender:   conn,
		Logger:   logger,
		Protocol: protocol,
		ConnID:   conn.ID(),
	})
	handler.attach(sess)
	defer sess.Close()

	var mirror *persistence.MirrorStore
	if config.StateFile != "" {
		mirror = persistence.NewMirrorStore(config.StateFile)
		found, err := mirror.Load(sess.Store())
		if err != nil {
			logger.Warn("failed to load mirror snapshot", "error", err)
		} else if found {
			devices, features := sess.Store().Len()
			logger.Info("loaded mirror snapshot", "devices", devices, "features", features)
		}
		defer func() {
			if err := mirror.Save(sess.Store()); err != nil {
				logger.Warn("failed to save mirror snapshot", "error", err)
			}
		}()
	}

	if err := sess.Authenticate(ctx, token); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	groupIDs, err := sess.ReadRootGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to read root groups: %w", err)
	}
	logger.Info("account mirrored",
		"groups", len(groupIDs),
		"devices", len(sess.Store().Devices()),
		"features", len(sess.Store().Features()))

	if config.Interactive {
		shell, err := interactive.New(sess)
		if err != nil {
			return err
		}
		// Route log output through readline so it does not clobber the
		// prompt.
		slog.SetDefault(slog.New(slog.NewTextHandler(shell.Stdout(), &slog.HandlerOptions{Level: level})))
		go shell.Run(ctx, cancel)
	} else {
		sess.OnEvent(func(e model.FeatureEvent) {
			fmt.Println(e.String())
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	return nil
}

func mergeConfig(config *Config, flags Config) {
	if flags.Email != "" {
		config.Email = flags.Email
	}
	if flags.Password != "" {
		config.Password = flags.Password
	}
	if flags.AuthURL != "" {
		config.AuthURL = flags.AuthURL
	}
	if flags.WebsocketURL != "" {
		config.WebsocketURL = flags.WebsocketURL
	}
	if flags.Proxy != "" {
		config.Proxy = flags.Proxy
	}
	if flags.LogLevel != "" {
		config.LogLevel = flags.LogLevel
	}
	if flags.Capture != "" {
		config.Capture = flags.Capture
	}
	if flags.StateFile != "" {
		config.StateFile = flags.StateFile
	}
}

// buildProtocolLogger assembles the protocol capture chain: slog at
// debug level, plus an optional CBOR capture file.
func buildProtocolLogger(capturePath string, logger *slog.Logger) (log.Logger, func(), error) {
	slogAdapter := log.NewSlogAdapter(logger)
	if capturePath == "" {
		return slogAdapter, func() {}, nil
	}

	fileLogger, err := log.NewFileLogger(capturePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	multi := log.NewMultiLogger(slogAdapter, fileLogger)
	return multi, func() { fileLogger.Close() }, nil
}
