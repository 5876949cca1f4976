package flow

import "context"

// Provider reports and requests permission state on behalf of the
// coordinator. The native, channel-backed implementation lives in
// pkg/native; tests and embedders supply their own.
//
// Providers do not render UI themselves beyond the operating system's own
// permission dialog triggered by Request.
type Provider interface {
	// Status returns the current status of the permission. It performs no
	// side effects and never triggers a dialog.
	Status(ctx context.Context, permission ID) (Status, error)

	// Request asks the platform for the permission and blocks until the user
	// responds or ctx is canceled or times out. It may trigger a native OS
	// prompt. The returned status reflects the user's decision.
	Request(ctx context.Context, permission ID) (Status, error)
}
