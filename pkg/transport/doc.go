// Package transport provides the websocket connection to the Lightwave
// service.
//
// The transport layer handles:
//   - Websocket dialing (optionally through an HTTP proxy)
//   - A single read loop that preserves frame arrival order
//   - Serialized writes from concurrent callers
//   - Ping/pong keep-alive for connection liveness
//   - Connection state management
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│       JSON Messages            │
//	├────────────────────────────────┤
//	│    Websocket Text Frames       │
//	├────────────────────────────────┤
//	│       TLS (wss) / TCP          │
//	└────────────────────────────────┘
//
// The read loop is the only goroutine that delivers inbound frames, so
// the handler observes frames in exactly the order the service sent
// them. Reconnecting after a drop is left to the caller.
package transport
