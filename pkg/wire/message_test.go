package wire

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestEncodeMessageFieldNames(t *testing.T) {
	seq := NewSequence()
	item, err := NewItem(seq, &FeatureWritePayload{FeatureID: "F1", Value: 1})
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	msg := NewRequest(seq, ClassFeature, OpWrite, []Item{item})
	data, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}

	// The field names are a fixed wire contract.
	for _, field := range []string{
		`"class":"feature"`,
		`"direction":"request"`,
		`"operation":"write"`,
		`"senderId":`,
		`"transactionId":0`,
		`"version":1`,
		`"items":`,
		`"itemId":0`,
		`"featureId":"F1"`,
	} {
		if !bytes.Contains(data, []byte(field)) {
			t.Errorf("encoded message missing %s: %s", field, data)
		}
	}

	// success and error are omitted when absent.
	for _, field := range []string{`"success"`, `"error"`} {
		if bytes.Contains(data, []byte(field)) {
			t.Errorf("encoded request should not carry %s: %s", field, data)
		}
	}
}

func TestDecodeMessage(t *testing.T) {
	raw := `{
		"class": "user",
		"direction": "response",
		"operation": "authenticate",
		"senderId": "abc",
		"transactionId": 4,
		"version": 1,
		"items": [{"itemId": 9, "success": true}]
	}`

	msg, err := DecodeMessage([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}

	if msg.Class != ClassUser || msg.Operation != OpAuthenticate {
		t.Errorf("unexpected class/operation: %s/%s", msg.Class, msg.Operation)
	}
	if msg.TransactionID != 4 {
		t.Errorf("expected transactionId 4, got %d", msg.TransactionID)
	}
	if len(msg.Items) != 1 || !msg.Items[0].Succeeded() {
		t.Errorf("expected one successful item, got %+v", msg.Items)
	}
}

func TestDecodeMessageMalformed(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Error("expected error for malformed frame")
	}
}

func TestItemSucceeded(t *testing.T) {
	yes, no := true, false

	cases := []struct {
		name string
		item Item
		want bool
	}{
		{"explicit true", Item{Success: &yes}, true},
		{"explicit false", Item{Success: &no}, false},
		{"absent", Item{}, false},
	}
	for _, tc := range cases {
		if got := tc.item.Succeeded(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestItemDecodePayload(t *testing.T) {
	item := Item{ItemID: 1, Payload: json.RawMessage(`{"value": 75, "status": "ok"}`)}

	var result FeatureResult
	if err := item.DecodePayload(&result); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if result.Value != 75 || result.Status != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}

	empty := Item{ItemID: 2}
	if err := empty.DecodePayload(&result); err == nil {
		t.Error("expected error for missing payload")
	}
}

func TestDirectionIsValid(t *testing.T) {
	cases := []struct {
		dir  Direction
		want bool
	}{
		{DirectionRequest, true},
		{DirectionResponse, true},
		{DirectionNotification, true},
		{Direction("sideways"), false},
		{Direction(""), false},
	}
	for _, tc := range cases {
		if got := tc.dir.IsValid(); got != tc.want {
			t.Errorf("IsValid(%q): expected %v, got %v", tc.dir, tc.want, got)
		}
	}
}

func TestNeedsItemCorrelation(t *testing.T) {
	cases := []struct {
		class Class
		op    Operation
		want  bool
	}{
		{ClassFeature, OpRead, true},
		{ClassFeature, OpWrite, true},
		{ClassFeature, OpEvent, false},
		{ClassGroup, OpRead, false},
		{ClassUser, OpAuthenticate, false},
	}
	for _, tc := range cases {
		m := &Message{Class: tc.class, Operation: tc.op}
		if got := m.NeedsItemCorrelation(); got != tc.want {
			t.Errorf("%s/%s: expected %v, got %v", tc.class, tc.op, tc.want, got)
		}
	}
}

func TestHierarchyResultDisplayNames(t *testing.T) {
	result := &HierarchyResult{
		FeatureSet: []FeatureSet{
			{Name: "Bedroom Switch 1", Features: []string{"F1", "F2"}},
			{Name: "Bedroom Switch 2", Features: []string{"F3"}},
		},
	}

	names := result.DisplayNames()
	if len(names) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(names))
	}
	if names["F2"] != "Bedroom Switch 1" || names["F3"] != "Bedroom Switch 2" {
		t.Errorf("unexpected mapping: %v", names)
	}
}
