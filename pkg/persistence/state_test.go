package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lightwave-link/lightwave-go/pkg/model"
)

func TestMirrorStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		dir := t.TempDir()
		mirror := NewMirrorStore(filepath.Join(dir, "mirror.json"))

		store := model.NewStore()
		store.UpsertDevices(map[string]*model.Device{
			"D1": {DeviceID: "D1", Name: "Master Bedroom", ProductCode: "L42"},
		})
		store.UpsertFeatures(map[string]*model.Feature{
			"F1": {
				FeatureID:  "F1",
				DeviceID:   "D1",
				Attributes: &model.Attributes{Type: "switch", Value: 1},
			},
		})
		store.ReplaceDisplayNames(map[string]string{"F1": "Master Bedroom Switch 2"})

		if err := mirror.Save(store); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		restored := model.NewStore()
		found, err := mirror.Load(restored)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !found {
			t.Fatal("Load() found = false, want true")
		}

		device, ok := restored.Device("D1")
		if !ok || device.Name != "Master Bedroom" {
			t.Errorf("Device(D1) = %+v, %v", device, ok)
		}
		feature, ok := restored.Feature("F1")
		if !ok || feature.Attributes == nil || feature.Attributes.Value != 1 {
			t.Errorf("Feature(F1) = %+v, %v", feature, ok)
		}
		name, ok := restored.DisplayName("F1")
		if !ok || name != "Master Bedroom Switch 2" {
			t.Errorf("DisplayName(F1) = %q, %v", name, ok)
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		dir := t.TempDir()
		mirror := NewMirrorStore(filepath.Join(dir, "nonexistent.json"))

		found, err := mirror.Load(model.NewStore())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if found {
			t.Error("Load() found = true for non-existent file")
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mirror.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		mirror := NewMirrorStore(path)
		if _, err := mirror.Load(model.NewStore()); err == nil {
			t.Error("Load() error = nil for corrupt file")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		dir := t.TempDir()
		mirror := NewMirrorStore(filepath.Join(dir, "mirror.json"))

		if err := mirror.Save(model.NewStore()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := mirror.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		// Clearing twice is fine.
		if err := mirror.Clear(); err != nil {
			t.Fatalf("second Clear() error = %v", err)
		}

		found, err := mirror.Load(model.NewStore())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if found {
			t.Error("Load() found = true after Clear()")
		}
	})
}
