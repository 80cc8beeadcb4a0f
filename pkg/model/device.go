package model

import "time"

// Device is one physical Lightwave device as reported by a group read.
type Device struct {
	DeviceID           string     `json:"deviceId"`
	Name               string     `json:"name"`
	ProductCode        string     `json:"productCode"`
	FeatureIDs         []string   `json:"featureIds"`
	FeatureSetGroupIDs []string   `json:"featureSetGroupIds"`
	Paired             *bool      `json:"paired,omitempty"`
	CreatedDate        *time.Time `json:"createdDate,omitempty"`
}

// clone returns a copy safe to hand to callers. Device records are
// replaced wholesale on upsert, never mutated in place, so a struct
// copy suffices.
func (d *Device) clone() *Device {
	c := *d
	return &c
}

// Feature is one controllable or readable attribute of a device, such as
// a switch state or a dim level. DeviceID is a back-reference for lookup
// only; the feature is owned by the store, not the device record.
type Feature struct {
	FeatureID   string      `json:"featureId"`
	DeviceID    string      `json:"deviceId"`
	Name        string      `json:"name"`
	Groups      []string    `json:"groups"`
	Attributes  *Attributes `json:"attributes,omitempty"`
	Paired      string      `json:"paired,omitempty"`
	CreatedDate *time.Time  `json:"createdDate,omitempty"`
}

// clone returns a copy safe to hand to callers. Attributes is the one
// field updated in place as events arrive, so it is copied too.
func (f *Feature) clone() *Feature {
	c := *f
	if f.Attributes != nil {
		attrs := *f.Attributes
		c.Attributes = &attrs
	}
	return &c
}

// Attributes carries the live state of a feature. Value and Status are
// mutated in place whenever a feature read response or an event
// notification reports a new value.
type Attributes struct {
	Channel   int    `json:"channel"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Value     int    `json:"value"`
	Status    string `json:"status"`
	Writeable *bool  `json:"writeable,omitempty"`
}
