package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lightwave-link/lightwave-go/pkg/model"
)

// StateVersion is the current version of the snapshot file format.
const StateVersion = 1

// MirrorState is the on-disk form of the entity mirror.
type MirrorState struct {
	// Version is the snapshot file format version.
	Version int `json:"version"`

	// SavedAt is when the snapshot was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Devices and Features are the mirrored entities, keyed by id.
	Devices  map[string]*model.Device  `json:"devices,omitempty"`
	Features map[string]*model.Feature `json:"features,omitempty"`

	// DisplayNames maps feature ids to hierarchy display names.
	DisplayNames map[string]string `json:"display_names,omitempty"`
}

// MirrorStore manages persistence of the entity mirror to a JSON file.
type MirrorStore struct {
	mu   sync.Mutex
	path string
}

// NewMirrorStore creates a new mirror store.
func NewMirrorStore(path string) *MirrorStore {
	return &MirrorStore{path: path}
}

// Save snapshots the store's contents to disk.
func (s *MirrorStore) Save(store *model.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state := MirrorState{
		Version:      StateVersion,
		SavedAt:      time.Now(),
		Devices:      make(map[string]*model.Device),
		Features:     make(map[string]*model.Feature),
		DisplayNames: make(map[string]string),
	}
	for _, device := range store.Devices() {
		state.Devices[device.DeviceID] = device
	}
	for _, feature := range store.Features() {
		state.Features[feature.FeatureID] = feature
		if name, ok := store.DisplayName(feature.FeatureID); ok {
			state.DisplayNames[feature.FeatureID] = name
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads a snapshot from disk and applies it to the store.
// Returns false, nil if the file doesn't exist (no snapshot yet).
func (s *MirrorStore) Load(store *model.Store) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var state MirrorState
	if err := json.Unmarshal(data, &state); err != nil {
		return false, err
	}

	store.UpsertDevices(state.Devices)
	store.UpsertFeatures(state.Features)
	if len(state.DisplayNames) > 0 {
		store.ReplaceDisplayNames(state.DisplayNames)
	}
	return true, nil
}

// Clear removes the snapshot file.
func (s *MirrorStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
