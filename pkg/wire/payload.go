package wire

import (
	"encoding/json"
	"fmt"
)

// AuthenticatePayload is the request payload for user/authenticate.
type AuthenticatePayload struct {
	ClientDeviceID string `json:"clientDeviceId"`
	Token          string `json:"token"`
}

// RootGroupsResult is the response payload for user/rootGroups.
type RootGroupsResult struct {
	GroupIDs []string `json:"groupIds"`
}

// GroupReadPayload is the request payload for group/read, one per group.
type GroupReadPayload struct {
	GroupID       string `json:"groupId"`
	Blocks        bool   `json:"blocks"`
	Devices       bool   `json:"devices"`
	Features      bool   `json:"features"`
	Scripts       bool   `json:"scripts"`
	Subgroups     bool   `json:"subgroups"`
	SubgroupDepth int    `json:"subgroupDepth"`
}

// HierarchyPayload is the request payload for group/hierarchy, one per group.
type HierarchyPayload struct {
	GroupID string `json:"groupId"`
}

// HierarchyResult is the response payload for group/hierarchy. The service
// returns the full hierarchy (root group > homes > zones > rooms > feature
// sets > device features); this client only consumes the feature sets,
// which are the sole source of user-assigned names.
type HierarchyResult struct {
	FeatureSet []FeatureSet `json:"featureSet"`
}

// FeatureSet groups device features under one user-assigned name.
type FeatureSet struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// DisplayNames flattens the result into a feature id to feature-set name
// mapping.
func (r *HierarchyResult) DisplayNames() map[string]string {
	names := make(map[string]string)
	for _, set := range r.FeatureSet {
		for _, featureID := range set.Features {
			names[featureID] = set.Name
		}
	}
	return names
}

// FeatureReadPayload is the request payload for feature/read.
type FeatureReadPayload struct {
	FeatureID string `json:"featureId"`
}

// FeatureWritePayload is the request payload for feature/write.
type FeatureWritePayload struct {
	FeatureID string `json:"featureId"`
	Value     int    `json:"value"`
}

// FeatureResult is the response payload for feature/read and feature/write.
type FeatureResult struct {
	Value  int    `json:"value"`
	Status string `json:"status"`
}

// EventPayload is the notification payload for feature events.
type EventPayload struct {
	FeatureID string `json:"featureId"`
	Value     int    `json:"value"`
}

// NewItem builds an item with the next process-global item id and the
// given payload. A nil payload produces an item without a payload field,
// as used by user/rootGroups.
func NewItem(seq *Sequence, payload any) (Item, error) {
	item := Item{ItemID: seq.NextItem()}
	if payload == nil {
		return item, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Item{}, fmt.Errorf("failed to encode item payload: %w", err)
	}
	item.Payload = data
	return item, nil
}
