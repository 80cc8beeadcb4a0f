// Package session provides the typed command facade over the correlation
// engine.
//
// A [Session] owns one live connection's protocol state: the sequence
// generator, the transaction registry, the dispatcher and the entity
// store. Its operations (authenticate, read root groups, read groups,
// read hierarchy, read feature, write feature) build envelopes, send them
// through the transport, and suspend the caller until the correlating
// response arrives or the request deadline expires.
//
// Wiring a session to a transport takes two calls:
//
//	sess := session.New(session.Config{Sender: conn})
//	// deliver every inbound frame to the session, in arrival order
//	handler.OnMessage = sess.HandleFrame
//
// Feature reads and writes carry exactly one item per request. The
// service answers them without a usable transaction id, and the item
// based correlation fallback is only unambiguous while each request owns
// a single item; batching is therefore not offered for those operations.
package session
