package model

import "fmt"

// FeatureEvent is the surfaced record of an unsolicited feature value
// change. DisplayName carries the user-assigned feature-set name when the
// hierarchy has one, otherwise the feature's own attribute name.
type FeatureEvent struct {
	FeatureID     string
	DisplayName   string
	AttributeType string
	Value         int
}

// String renders the event in a human-readable form.
func (e FeatureEvent) String() string {
	return fmt.Sprintf("%s %s = %d", e.DisplayName, e.AttributeType, e.Value)
}
