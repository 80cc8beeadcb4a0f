package model

import (
	"fmt"
	"sync"
	"testing"
)

func testFeature(id, deviceID, attrType string, value int) *Feature {
	return &Feature{
		FeatureID: id,
		DeviceID:  deviceID,
		Attributes: &Attributes{
			Name:  "channel " + id,
			Type:  attrType,
			Value: value,
		},
	}
}

func TestStoreUpsertAdditive(t *testing.T) {
	store := NewStore()

	store.UpsertDevices(map[string]*Device{
		"D1": {DeviceID: "D1", Name: "Master Bedroom"},
	})
	store.UpsertDevices(map[string]*Device{
		"D2": {DeviceID: "D2", Name: "Hallway"},
	})

	// Second upsert must not remove D1.
	if _, ok := store.Device("D1"); !ok {
		t.Error("expected D1 to survive a later upsert")
	}
	if _, ok := store.Device("D2"); !ok {
		t.Error("expected D2 to be added")
	}

	// Overwrite by id.
	store.UpsertDevices(map[string]*Device{
		"D1": {DeviceID: "D1", Name: "Main Bedroom"},
	})
	device, _ := store.Device("D1")
	if device.Name != "Main Bedroom" {
		t.Errorf("expected overwrite, got %q", device.Name)
	}

	devices, features := store.Len()
	if devices != 2 || features != 0 {
		t.Errorf("expected 2 devices, 0 features; got %d, %d", devices, features)
	}
}

func TestStoreReplaceDisplayNames(t *testing.T) {
	store := NewStore()

	store.ReplaceDisplayNames(map[string]string{
		"F1": "Bedroom Switch 1",
		"F2": "Bedroom Switch 2",
	})
	store.ReplaceDisplayNames(map[string]string{
		"F2": "Renamed Switch",
	})

	// Full replace: F1 existed before the second call and must now be absent.
	if _, ok := store.DisplayName("F1"); ok {
		t.Error("expected F1 mapping to be discarded by replace")
	}
	name, ok := store.DisplayName("F2")
	if !ok || name != "Renamed Switch" {
		t.Errorf("expected renamed mapping, got %q, %v", name, ok)
	}
}

func TestStoreUpdateFeatureValue(t *testing.T) {
	store := NewStore()
	store.UpsertFeatures(map[string]*Feature{
		"F1": testFeature("F1", "D1", "switch", 0),
	})

	if !store.UpdateFeatureValue("F1", 1, "ok") {
		t.Error("expected update of known feature to succeed")
	}
	feature, _ := store.Feature("F1")
	if feature.Attributes.Value != 1 || feature.Attributes.Status != "ok" {
		t.Errorf("unexpected attributes: %+v", feature.Attributes)
	}

	// Unknown feature: no-op, not an error.
	if store.UpdateFeatureValue("F9", 1, "ok") {
		t.Error("expected update of unknown feature to report false")
	}

	// Empty status leaves the previous status in place.
	store.UpdateFeatureValue("F1", 0, "")
	feature, _ = store.Feature("F1")
	if feature.Attributes.Status != "ok" {
		t.Errorf("expected status preserved, got %q", feature.Attributes.Status)
	}
}

func TestStoreSnapshots(t *testing.T) {
	store := NewStore()
	store.UpsertDevices(map[string]*Device{
		"D1": {DeviceID: "D1", Name: "Master Bedroom"},
	})
	store.UpsertFeatures(map[string]*Feature{
		"F1": testFeature("F1", "D1", "switch", 0),
		"F2": testFeature("F2", "D1", "dimLevel", 40),
	})

	if len(store.Devices()) != 1 {
		t.Errorf("expected 1 device, got %d", len(store.Devices()))
	}

	// The by-name scan the store deliberately does not index for.
	var dimID string
	for _, f := range store.Features() {
		if f.DeviceID == "D1" && f.Attributes.Type == "dimLevel" {
			dimID = f.FeatureID
		}
	}
	if dimID != "F2" {
		t.Errorf("expected to find F2 by scan, got %q", dimID)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.UpsertFeatures(map[string]*Feature{
		"F1": testFeature("F1", "D1", "dimLevel", 10),
	})

	held, _ := store.Feature("F1")
	heldList := store.Features()

	store.UpdateFeatureValue("F1", 99, "ok")

	// Records handed out before the update keep their values.
	if held.Attributes.Value != 10 {
		t.Errorf("held copy changed underfoot: got %d, want 10", held.Attributes.Value)
	}
	if heldList[0].Attributes.Value != 10 {
		t.Errorf("held snapshot changed underfoot: got %d, want 10", heldList[0].Attributes.Value)
	}

	// A fresh read sees the update.
	fresh, _ := store.Feature("F1")
	if fresh.Attributes.Value != 99 {
		t.Errorf("fresh read = %d, want 99", fresh.Attributes.Value)
	}

	// Mutating a returned device must not leak back into the store.
	store.UpsertDevices(map[string]*Device{
		"D1": {DeviceID: "D1", Name: "Master Bedroom"},
	})
	device, _ := store.Device("D1")
	device.Name = "scribbled"
	device, _ = store.Device("D1")
	if device.Name != "Master Bedroom" {
		t.Errorf("store record mutated through a returned copy: %q", device.Name)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("F%d", n)
			store.UpsertFeatures(map[string]*Feature{
				id: testFeature(id, "D1", "switch", 0),
			})
			store.UpdateFeatureValue(id, 1, "ok")
		}(i)
		go func() {
			defer wg.Done()
			store.Features()
			store.Len()
		}()
	}
	wg.Wait()

	_, features := store.Len()
	if features != 8 {
		t.Errorf("expected 8 features, got %d", features)
	}
}
