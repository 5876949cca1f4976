package flow

// ID identifies a requestable permission capability.
type ID string

// Well-known permission identifiers. These match the vocabulary of the drift
// engine's permission channel; custom providers may accept additional values.
const (
	Camera        ID = "camera"
	Microphone    ID = "microphone"
	Storage       ID = "storage"
	Photos        ID = "photos"
	Contacts      ID = "contacts"
	Calendar      ID = "calendar"
	Location      ID = "location"
	Notifications ID = "notifications"
)

// Descriptor pairs a permission identifier with the user-facing strings a
// prompt surface renders. Descriptors are immutable values constructed per
// request; nothing is persisted.
type Descriptor struct {
	// Permission is the capability being requested.
	Permission ID

	// Title is a short human-readable name for the capability.
	Title string

	// Rationale explains why the app needs the capability. Shown by the
	// prompt surface before the native dialog appears.
	Rationale string
}
