// Package wire defines the JSON wire format for the Lightwave Link Plus
// websocket protocol.
//
// Every exchange is a single JSON envelope ([Message]) that is a request,
// a response, or an unsolicited notification. Envelopes carry one or more
// items ([Item]), each with its own process-global item id, an opaque
// payload whose shape depends on the envelope's class/operation pair, and
// an optional success/error outcome.
//
// # Correlation
//
// Requests and responses are correlated by transactionId. Feature read and
// write responses are the exception: the service emits them without the
// original transaction id, so callers fall back to matching the response's
// item id against the items of the requests still in flight. Item ids are
// therefore drawn from a single process-wide counter, independent of the
// transaction counter (see [Sequence]).
//
// # Payloads
//
// Payloads stay encoded as json.RawMessage on the envelope and are decoded
// into the typed structs of this package per class/operation pair. No
// untyped payload value crosses a package boundary.
package wire
