// Package interactive provides the interactive command-line interface
// for lwctl.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lightwave-link/lightwave-go/pkg/model"
	"github.com/lightwave-link/lightwave-go/pkg/session"
)

// Client handles interactive mode for lwctl.
type Client struct {
	sess *session.Session
	rl   *readline.Instance

	showEvents bool
}

// New creates a new interactive client handler.
func New(sess *session.Session) (*Client, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lw> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Client{
		sess: sess,
		rl:   rl,
	}

	sess.OnEvent(c.handleEvent)

	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (c *Client) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Client) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "devices", "list", "ls":
			c.cmdDevices()

		case "features", "f":
			c.cmdFeatures(args)

		case "read", "r":
			c.cmdRead(ctx, args)

		case "write", "w":
			c.cmdWrite(ctx, args)

		case "on":
			c.cmdSwitch(ctx, args, 1)

		case "off":
			c.cmdSwitch(ctx, args, 0)

		case "dim":
			c.cmdDim(ctx, args)

		case "refresh":
			c.cmdRefresh(ctx)

		case "events", "e":
			c.showEvents = !c.showEvents
			fmt.Fprintf(c.rl.Stdout(), "Event display %s\n", onOff(c.showEvents))

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Client) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Lightwave Client Commands:
  Inspection:
    devices                  - List devices
    features <device-name>   - List a device's features
    read <feature-id>        - Read a feature value
    status                   - Show session status

  Control:
    write <feature-id> <value> - Write a feature value
    on <device-name>           - Switch a device on
    off <device-name>          - Switch a device off
    dim <device-name> <pct>    - Set a dim level (0-100)

  General:
    refresh                  - Re-read groups and hierarchy
    events                   - Toggle live event display
    help                     - Show this help
    quit                     - Exit`)
}

// handleEvent prints feature events when event display is enabled.
func (c *Client) handleEvent(event model.FeatureEvent) {
	if !c.showEvents {
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "event: %s\n", event.String())
}

func (c *Client) cmdDevices() {
	devices := c.sess.Store().Devices()
	if len(devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices")
		return
	}
	for _, device := range devices {
		fmt.Fprintf(c.rl.Stdout(), "  %-30s %s (%s, %d features)\n",
			device.Name, device.DeviceID, device.ProductCode, len(device.FeatureIDs))
	}
}

func (c *Client) cmdFeatures(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: features <device-name>")
		return
	}
	device := c.findDevice(strings.Join(args, " "))
	if device == nil {
		return
	}

	for _, feature := range c.sess.Store().Features() {
		if feature.DeviceID != device.DeviceID {
			continue
		}
		name, _ := c.sess.Store().DisplayName(feature.FeatureID)
		if feature.Attributes == nil {
			fmt.Fprintf(c.rl.Stdout(), "  %-30s %s\n", name, feature.FeatureID)
			continue
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-30s %s type=%s value=%d\n",
			name, feature.FeatureID, feature.Attributes.Type, feature.Attributes.Value)
	}
}

func (c *Client) cmdRead(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: read <feature-id>")
		return
	}
	value, err := c.sess.ReadFeature(ctx, args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s = %d\n", args[0], value)
}

func (c *Client) cmdWrite(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: write <feature-id> <value>")
		return
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s\n", args[1])
		return
	}
	if err := c.sess.WriteFeature(ctx, args[0], value); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "OK\n")
}

// cmdSwitch finds the named device's switch feature and writes 0 or 1.
func (c *Client) cmdSwitch(ctx context.Context, args []string, value int) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: on|off <device-name>")
		return
	}
	c.writeByType(ctx, strings.Join(args, " "), "switch", value)
}

func (c *Client) cmdDim(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: dim <device-name> <pct>")
		return
	}
	pct, err := strconv.Atoi(args[len(args)-1])
	if err != nil || pct < 0 || pct > 100 {
		fmt.Fprintf(c.rl.Stdout(), "Invalid dim level: %s\n", args[len(args)-1])
		return
	}
	c.writeByType(ctx, strings.Join(args[:len(args)-1], " "), "dimLevel", pct)
}

// writeByType resolves a device by name, then that device's feature of
// the given attribute type, and writes the value.
func (c *Client) writeByType(ctx context.Context, deviceName, attrType string, value int) {
	device := c.findDevice(deviceName)
	if device == nil {
		return
	}

	for _, feature := range c.sess.Store().Features() {
		if feature.DeviceID != device.DeviceID {
			continue
		}
		if feature.Attributes == nil || feature.Attributes.Type != attrType {
			continue
		}
		if err := c.sess.WriteFeature(ctx, feature.FeatureID, value); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Write failed: %v\n", err)
			return
		}
		name, _ := c.sess.Store().DisplayName(feature.FeatureID)
		fmt.Fprintf(c.rl.Stdout(), "%s %s = %d\n", name, attrType, value)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Device %q has no %s feature\n", deviceName, attrType)
}

func (c *Client) cmdRefresh(ctx context.Context) {
	groupIDs, err := c.sess.ReadRootGroups(ctx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Refresh failed: %v\n", err)
		return
	}
	devices, features := c.sess.Store().Len()
	fmt.Fprintf(c.rl.Stdout(), "Refreshed %d group(s): %d devices, %d features\n",
		len(groupIDs), devices, features)
}

func (c *Client) cmdStatus() {
	devices, features := c.sess.Store().Len()
	stats := c.sess.Stats()
	fmt.Fprintf(c.rl.Stdout(), "Devices:  %d\n", devices)
	fmt.Fprintf(c.rl.Stdout(), "Features: %d\n", features)
	fmt.Fprintf(c.rl.Stdout(), "Resolved responses:  %d\n", stats.Resolved)
	fmt.Fprintf(c.rl.Stdout(), "Malformed frames:    %d\n", stats.MalformedFrames)
	fmt.Fprintf(c.rl.Stdout(), "Correlation misses:  %d\n", stats.CorrelationMiss)
	fmt.Fprintf(c.rl.Stdout(), "Unexpected frames:   %d\n", stats.UnexpectedFrames)
}

// findDevice resolves a device by name, case-insensitively.
func (c *Client) findDevice(name string) *model.Device {
	for _, device := range c.sess.Store().Devices() {
		if strings.EqualFold(device.Name, name) {
			return device
		}
	}
	fmt.Fprintf(c.rl.Stdout(), "No device named %q\n", name)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
