// Package model holds the local mirror of remote Lightwave entities.
//
// The [Store] shadows the devices, features and user-assigned display
// names the service reports. It is fed from two directions: responses to
// group and hierarchy reads, and unsolicited event notifications. Device
// and feature records are merged additively and never deleted; the
// display-name mapping is rebuilt in full on every hierarchy read because
// the hierarchy is its only source of truth.
//
// All lookups are by exact identifier. By-name searches are the caller's
// concern, over the snapshots returned by [Store.Devices] and
// [Store.Features].
package model
