package flow

// Status represents the state of a permission as reported by a Provider.
type Status string

// Permission status values.
const (
	// StatusGranted indicates full access has been granted.
	StatusGranted Status = "granted"

	// StatusDenied indicates the user denied the permission. The app may
	// request again.
	StatusDenied Status = "denied"

	// StatusPermanentlyDenied indicates the user denied with "don't ask again"
	// (Android) or denied twice (iOS). The platform will not show its own
	// prompt again; the only remedy is the user changing system settings.
	StatusPermanentlyDenied Status = "permanently_denied"

	// StatusRestricted indicates a system policy prevents granting (parental
	// controls, MDM, enterprise policy). The user cannot change this and no
	// dialog will be shown.
	StatusRestricted Status = "restricted"

	// StatusLimited indicates partial access (iOS only). For Photos, this
	// means the user selected specific photos rather than granting full
	// library access. Treated as equivalent to granted.
	StatusLimited Status = "limited"

	// StatusUnknown indicates the status has not been determined, typically
	// because the user has never been asked. Requesting will show the system
	// permission dialog.
	StatusUnknown Status = "unknown"
)

// IsGranted returns true for statuses that count as access: granted and
// limited.
func (s Status) IsGranted() bool {
	return s == StatusGranted || s == StatusLimited
}

// Known returns true if s is one of the recognized status values. Providers
// returning anything else are treated conservatively as not granted.
func (s Status) Known() bool {
	switch s {
	case StatusGranted, StatusDenied, StatusPermanentlyDenied,
		StatusRestricted, StatusLimited, StatusUnknown:
		return true
	default:
		return false
	}
}
