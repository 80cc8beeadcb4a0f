package interaction

import (
	"errors"
	"sync"

	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// Registry errors.
var (
	// ErrDuplicateTransaction means a transaction id was registered twice.
	// The monotonic counter makes this unreachable in practice, but the
	// registry refuses rather than silently replacing a waiter.
	ErrDuplicateTransaction = errors.New("transaction id already registered")

	// ErrUnclaimedItem means no pending request owns the item id a
	// feature response was matched against.
	ErrUnclaimedItem = errors.New("no pending request owns item id")

	// ErrAmbiguousItem means more than one pending request owns the item
	// id. Completing an arbitrary one would hand a response to the wrong
	// caller, so the dispatch fails loudly instead.
	ErrAmbiguousItem = errors.New("item id owned by multiple pending requests")
)

// pendingRequest pairs the originally sent envelope with the channel its
// caller suspends on. The channel has capacity one and receives exactly
// one envelope; removal from the map before completion guarantees that.
type pendingRequest struct {
	request *wire.Message
	done    chan *wire.Message
}

// Registry maps outstanding transaction ids to suspended callers. All
// methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	pending map[int]*pendingRequest
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[int]*pendingRequest)}
}

// Register stores a pending entry for the request and returns the channel
// the caller suspends on. The channel is completed by Resolve or
// ResolveByItem and closed without a value by Cancel.
func (r *Registry) Register(transactionID int, request *wire.Message) (<-chan *wire.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[transactionID]; exists {
		return nil, ErrDuplicateTransaction
	}

	entry := &pendingRequest{
		request: request,
		done:    make(chan *wire.Message, 1),
	}
	r.pending[transactionID] = entry
	return entry.done, nil
}

// Resolve completes the pending entry for the transaction id with the
// response and reports whether an entry existed. Lookup and removal are
// atomic: a response completes at most one waiter, and a second response
// for the same id returns false for the caller to drop as stale.
func (r *Registry) Resolve(transactionID int, response *wire.Message) bool {
	r.mu.Lock()
	entry, ok := r.pending[transactionID]
	if ok {
		delete(r.pending, transactionID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.done <- response
	return true
}

// ResolveByItem is the feature correlation workaround. It scans the
// pending requests for the single one whose item set contains itemID,
// rewrites the response's transaction id to that request's, completes it,
// and returns the claimed transaction id. Zero owners yield
// ErrUnclaimedItem, more than one ErrAmbiguousItem; in both cases nothing
// is completed.
func (r *Registry) ResolveByItem(itemID int, response *wire.Message) (int, error) {
	r.mu.Lock()

	claimed := -1
	for transactionID, entry := range r.pending {
		if !ownsItem(entry.request, itemID) {
			continue
		}
		if claimed >= 0 {
			r.mu.Unlock()
			return -1, ErrAmbiguousItem
		}
		claimed = transactionID
	}

	if claimed < 0 {
		r.mu.Unlock()
		return -1, ErrUnclaimedItem
	}

	entry := r.pending[claimed]
	delete(r.pending, claimed)
	r.mu.Unlock()

	response.TransactionID = claimed
	entry.done <- response
	return claimed, nil
}

// Cancel removes a pending entry without a response, closing its channel.
// Used when a caller's deadline expires. Returns false if the entry was
// already resolved.
func (r *Registry) Cancel(transactionID int) bool {
	r.mu.Lock()
	entry, ok := r.pending[transactionID]
	if ok {
		delete(r.pending, transactionID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	close(entry.done)
	return true
}

// CancelAll removes every pending entry, closing each waiter's channel.
// Used when the session shuts down. Returns the number of entries
// cancelled.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	entries := make([]*pendingRequest, 0, len(r.pending))
	for transactionID, entry := range r.pending {
		entries = append(entries, entry)
		delete(r.pending, transactionID)
	}
	r.mu.Unlock()

	for _, entry := range entries {
		close(entry.done)
	}
	return len(entries)
}

// Len returns the number of requests currently outstanding.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// ownsItem reports whether the request envelope contains an item with the
// given id.
func ownsItem(request *wire.Message, itemID int) bool {
	for _, item := range request.Items {
		if item.ItemID == itemID {
			return true
		}
	}
	return false
}
