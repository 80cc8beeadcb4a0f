// Package interaction implements the correlation and dispatch engine at
// the heart of the client.
//
// Outbound requests register a pending entry in the [Registry] keyed by
// transaction id and suspend on the returned channel. Every inbound frame
// flows through the [Dispatcher], which either completes exactly one
// pending entry or routes the envelope as a notification.
//
// # The feature correlation workaround
//
// The service has a protocol defect: feature read and write responses are
// emitted without the original request's transaction id. For those
// envelopes the dispatcher matches the response's first item id against
// the item sets of the requests still in flight and rewrites the
// transaction id before resolving. The match must be unique; zero or
// multiple owners abort the dispatch loudly rather than completing an
// arbitrary request.
//
// # Concurrency
//
// Any number of callers may have requests outstanding. Inbound frames are
// dispatched one at a time in arrival order by the transport's single
// read loop; registry mutation is serialized by a mutex so a response can
// never complete two waiters, and a second response for the same
// transaction id is dropped as stale.
package interaction
