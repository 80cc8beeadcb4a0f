package interaction

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

func request(transactionID int, itemIDs ...int) *wire.Message {
	items := make([]wire.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		items = append(items, wire.Item{ItemID: id})
	}
	return &wire.Message{
		Class:         wire.ClassFeature,
		Direction:     wire.DirectionRequest,
		Operation:     wire.OpRead,
		TransactionID: transactionID,
		Version:       wire.Version,
		Items:         items,
	}
}

func response(transactionID int, itemIDs ...int) *wire.Message {
	msg := request(transactionID, itemIDs...)
	msg.Direction = wire.DirectionResponse
	return msg
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewRegistry()

	done, err := registry.Register(1, request(1, 10))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registry.Len() != 1 {
		t.Errorf("expected 1 pending, got %d", registry.Len())
	}

	resp := response(1, 10)
	if !registry.Resolve(1, resp) {
		t.Fatal("expected resolution")
	}
	if registry.Len() != 0 {
		t.Errorf("expected 0 pending, got %d", registry.Len())
	}

	select {
	case got := <-done:
		if got != resp {
			t.Error("waiter received the wrong response")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never completed")
	}
}

func TestRegistryDuplicateTransaction(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Register(1, request(1, 10)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := registry.Register(1, request(1, 11)); !errors.Is(err, ErrDuplicateTransaction) {
		t.Errorf("expected ErrDuplicateTransaction, got %v", err)
	}
}

func TestRegistryResolveAbsent(t *testing.T) {
	registry := NewRegistry()

	// A response for an unregistered transaction id is reported, not
	// crashed on, and never resolves an unrelated entry.
	done, _ := registry.Register(1, request(1, 10))
	if registry.Resolve(99, response(99, 50)) {
		t.Error("expected no resolution for unknown transaction id")
	}

	select {
	case <-done:
		t.Error("unrelated pending request was completed")
	default:
	}
}

func TestRegistryDoubleResolve(t *testing.T) {
	registry := NewRegistry()

	registry.Register(1, request(1, 10))
	if !registry.Resolve(1, response(1, 10)) {
		t.Fatal("first resolution should succeed")
	}
	// Second resolution: entry already removed, dropped safely.
	if registry.Resolve(1, response(1, 10)) {
		t.Error("second resolution should report false")
	}
}

func TestRegistryResolveByItem(t *testing.T) {
	registry := NewRegistry()

	// Two concurrently pending feature reads with items 5 and 6.
	doneA, _ := registry.Register(1, request(1, 5))
	doneB, _ := registry.Register(2, request(2, 6))

	// Response arrives with a useless transaction id but item id 6: it
	// must resolve the second request, not the first.
	resp := response(999, 6)
	transactionID, err := registry.ResolveByItem(6, resp)
	if err != nil {
		t.Fatalf("ResolveByItem: %v", err)
	}
	if transactionID != 2 {
		t.Errorf("expected transaction 2 claimed, got %d", transactionID)
	}
	if resp.TransactionID != 2 {
		t.Errorf("expected transaction id rewritten to 2, got %d", resp.TransactionID)
	}

	select {
	case <-doneB:
	case <-time.After(time.Second):
		t.Fatal("owning request never completed")
	}
	select {
	case <-doneA:
		t.Error("non-owning request was completed")
	default:
	}
}

func TestRegistryResolveByItemUnclaimed(t *testing.T) {
	registry := NewRegistry()
	registry.Register(1, request(1, 5))

	if _, err := registry.ResolveByItem(42, response(0, 42)); !errors.Is(err, ErrUnclaimedItem) {
		t.Errorf("expected ErrUnclaimedItem, got %v", err)
	}
	if registry.Len() != 1 {
		t.Error("a failed item correlation must not consume pending entries")
	}
}

func TestRegistryResolveByItemAmbiguous(t *testing.T) {
	registry := NewRegistry()

	// Two pending requests claiming the same item id should never happen
	// with the process-global item counter, but the scan must fail loudly
	// rather than pick an arbitrary match.
	registry.Register(1, request(1, 5))
	registry.Register(2, request(2, 5))

	if _, err := registry.ResolveByItem(5, response(0, 5)); !errors.Is(err, ErrAmbiguousItem) {
		t.Errorf("expected ErrAmbiguousItem, got %v", err)
	}
	if registry.Len() != 2 {
		t.Error("an ambiguous correlation must not consume pending entries")
	}
}

func TestRegistryCancel(t *testing.T) {
	registry := NewRegistry()

	done, _ := registry.Register(1, request(1, 10))
	if !registry.Cancel(1) {
		t.Fatal("expected cancellation of pending entry")
	}
	if registry.Len() != 0 {
		t.Errorf("expected 0 pending, got %d", registry.Len())
	}

	// Cancelled waiters observe a closed channel, not a response.
	if _, ok := <-done; ok {
		t.Error("expected closed channel after cancel")
	}

	// Cancel after resolve is a no-op.
	registry.Register(2, request(2, 11))
	registry.Resolve(2, response(2, 11))
	if registry.Cancel(2) {
		t.Error("expected cancel of resolved entry to report false")
	}
}

func TestRegistryConcurrentResolution(t *testing.T) {
	registry := NewRegistry()

	// N concurrent requests; responses arrive interleaved. Each waiter
	// must receive exactly the response carrying its own transaction id.
	const n = 50

	waiters := make([]<-chan *wire.Message, n)
	for i := 0; i < n; i++ {
		done, err := registry.Register(i, request(i, 1000+i))
		if err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
		waiters[i] = done
	}

	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if !registry.Resolve(id, response(id, 1000+id)) {
				t.Errorf("resolution of %d failed", id)
			}
		}(i)
	}
	wg.Wait()

	for i, done := range waiters {
		select {
		case got := <-done:
			if got.TransactionID != i {
				t.Errorf("waiter %d received response %d", i, got.TransactionID)
			}
		case <-time.After(time.Second):
			t.Fatalf("waiter %d never completed", i)
		}
	}
}
