package model

import "sync"

// Store is the in-memory mirror of remote entity state. It is written by
// the single dispatch path and read by arbitrarily many callers; all
// access goes through one RWMutex.
type Store struct {
	mu           sync.RWMutex
	devices      map[string]*Device
	features     map[string]*Feature
	displayNames map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		devices:      make(map[string]*Device),
		features:     make(map[string]*Feature),
		displayNames: make(map[string]string),
	}
}

// UpsertDevices merges devices by id: existing entries are overwritten,
// new ones added, nothing is ever deleted. Group reads are additive
// across calls.
func (s *Store) UpsertDevices(devices map[string]*Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, device := range devices {
		if device == nil {
			continue
		}
		s.devices[id] = device
	}
}

// UpsertFeatures merges features by id, same semantics as UpsertDevices.
func (s *Store) UpsertFeatures(features map[string]*Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, feature := range features {
		if feature == nil {
			continue
		}
		s.features[id] = feature
	}
}

// ReplaceDisplayNames discards the current feature id to display name
// mapping and installs the given one. The hierarchy read is the sole
// source of display names and is always read in full, so the previous
// contents are never merged.
func (s *Store) ReplaceDisplayNames(names map[string]string) {
	replacement := make(map[string]string, len(names))
	for id, name := range names {
		replacement[id] = name
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayNames = replacement
}

// UpdateFeatureValue records a new value and status for a feature. An
// unknown feature id is a no-op returning false: events can arrive before
// the owning feature record has been read.
func (s *Store) UpdateFeatureValue(featureID string, value int, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	feature, ok := s.features[featureID]
	if !ok || feature.Attributes == nil {
		return false
	}
	feature.Attributes.Value = value
	if status != "" {
		feature.Attributes.Status = status
	}
	return true
}

// Device returns a copy of the device with the given id. The copy does
// not change as later reads arrive.
func (s *Store) Device(deviceID string) (*Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	device, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	return device.clone(), true
}

// Feature returns a copy of the feature with the given id. The copy
// does not change as later events arrive.
func (s *Store) Feature(featureID string) (*Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feature, ok := s.features[featureID]
	if !ok {
		return nil, false
	}
	return feature.clone(), true
}

// DisplayName returns the user-assigned feature-set name for a feature.
func (s *Store) DisplayName(featureID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.displayNames[featureID]
	return name, ok
}

// Devices returns a snapshot of all known devices. The records are
// copies and do not change as later reads arrive.
func (s *Store) Devices() []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	devices := make([]*Device, 0, len(s.devices))
	for _, device := range s.devices {
		devices = append(devices, device.clone())
	}
	return devices
}

// Features returns a snapshot of all known features. The records are
// copies and do not change as later events arrive.
func (s *Store) Features() []*Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	features := make([]*Feature, 0, len(s.features))
	for _, feature := range s.features {
		features = append(features, feature.clone())
	}
	return features
}

// Len returns the number of devices and features currently mirrored.
func (s *Store) Len() (devices, features int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices), len(s.features)
}
