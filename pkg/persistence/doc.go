// Package persistence stores a snapshot of the mirrored account on disk.
//
// This package handles the JSON serialization of the entity mirror
// (devices, features, display names) so a client can show the last
// known state before the websocket session has finished priming, or
// inspect it offline.
package persistence
