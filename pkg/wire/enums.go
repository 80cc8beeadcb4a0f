package wire

// Class identifies the envelope category.
type Class string

const (
	// ClassUser covers authentication and account-scoped operations.
	ClassUser Class = "user"

	// ClassGroup covers group reads, hierarchy reads and group updates.
	ClassGroup Class = "group"

	// ClassFeature covers feature reads, writes and events.
	ClassFeature Class = "feature"
)

// String returns the class name as it appears on the wire.
func (c Class) String() string { return string(c) }

// Direction distinguishes requests, responses and notifications.
type Direction string

const (
	// DirectionRequest is a client-to-service request.
	DirectionRequest Direction = "request"

	// DirectionResponse is a service reply correlated to a request.
	DirectionResponse Direction = "response"

	// DirectionNotification is unsolicited service-to-client traffic.
	DirectionNotification Direction = "notification"
)

// IsValid returns true for a known direction.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionRequest, DirectionResponse, DirectionNotification:
		return true
	default:
		return false
	}
}

// String returns the direction name as it appears on the wire.
func (d Direction) String() string { return string(d) }

// Operation is the envelope verb.
type Operation string

const (
	// OpAuthenticate presents the bearer token after connecting.
	OpAuthenticate Operation = "authenticate"

	// OpRootGroups lists the account's root group ids.
	OpRootGroups Operation = "rootGroups"

	// OpRead reads groups (class "group") or features (class "feature").
	OpRead Operation = "read"

	// OpWrite writes a feature value.
	OpWrite Operation = "write"

	// OpHierarchy reads the group hierarchy, the only source of
	// user-assigned feature-set names.
	OpHierarchy Operation = "hierarchy"

	// OpEvent is an unsolicited feature value change notification.
	OpEvent Operation = "event"

	// OpUpdate is an unsolicited group change notification.
	OpUpdate Operation = "update"
)

// String returns the operation name as it appears on the wire.
func (o Operation) String() string { return string(o) }
