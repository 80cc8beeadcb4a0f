package log

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

func sampleMessage() *wire.Message {
	yes := true
	return &wire.Message{
		Class:         wire.ClassFeature,
		Direction:     wire.DirectionResponse,
		Operation:     wire.OpWrite,
		TransactionID: 7,
		Version:       wire.Version,
		Items:         []wire.Item{{ItemID: 12, Success: &yes}},
	}
}

func TestEventRoundTrip(t *testing.T) {
	event := NewMessageEvent("conn-1", DirectionIn, sampleMessage())

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if decoded.ConnectionID != "conn-1" || decoded.Category != CategoryMessage {
		t.Errorf("unexpected event: %+v", decoded)
	}
	if decoded.Message == nil {
		t.Fatal("expected message record")
	}
	if decoded.Message.TransactionID != 7 || decoded.Message.Operation != "write" {
		t.Errorf("unexpected message record: %+v", decoded.Message)
	}
	if decoded.Message.Success == nil || !*decoded.Message.Success {
		t.Error("expected success flag carried over")
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.lwlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	logger.Log(NewFrameEvent("conn-1", DirectionOut, 128))
	logger.Log(NewMessageEvent("conn-1", DirectionIn, sampleMessage()))
	logger.Log(NewAnomalyEvent("conn-2", AnomalyCorrelationMiss, "no owner"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Logging after close is ignored.
	logger.Log(NewFrameEvent("conn-1", DirectionOut, 1))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		_, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.lwlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Log(NewFrameEvent("conn-1", DirectionOut, 64))
	logger.Log(NewAnomalyEvent("conn-1", AnomalyStaleResponse, ""))
	logger.Close()

	category := CategoryAnomaly
	reader, err := NewFilteredReader(path, Filter{Category: &category})
	if err != nil {
		t.Fatalf("NewFilteredReader: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if event.Anomaly == nil || event.Anomaly.Kind != AnomalyStaleResponse {
		t.Errorf("unexpected event: %+v", event)
	}

	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestMultiLogger(t *testing.T) {
	var mu sync.Mutex
	var got []Event

	collect := loggerFunc(func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	multi := NewMultiLogger(collect, NoopLogger{}, collect)
	multi.Log(NewFrameEvent("conn-1", DirectionIn, 32))

	if len(got) != 2 {
		t.Errorf("expected event delivered to both collectors, got %d", len(got))
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(NewErrorEvent("conn-1", LayerSession, errors.New("boom"), "write feature"))

	out := buf.String()
	for _, want := range []string{"conn-1", "SESSION", "boom", "write feature"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("slog output missing %q: %s", want, out)
		}
	}
}

// loggerFunc adapts a function to the Logger interface.
type loggerFunc func(Event)

func (f loggerFunc) Log(e Event) { f(e) }
