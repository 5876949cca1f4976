package flow

import "context"

// PromptSurface renders and dismisses the explanatory UI around a permission
// request and reacts to denial outcomes. The coordinator depends only on this
// interface; any UI toolkit can implement it.
//
// All methods receive the caller's context (hosts that need a display handle
// thread it through the context) and the descriptor being evaluated. Methods
// must be safe to call in sequence; the coordinator never calls them
// concurrently.
type PromptSurface interface {
	// ShowPrompt presents the rationale UI. Always invoked before the
	// provider request is issued.
	ShowPrompt(ctx context.Context, d Descriptor) error

	// ClosePrompt dismisses the rationale UI. Invoked after the provider
	// request completes, on every exit path once ShowPrompt has succeeded.
	ClosePrompt(ctx context.Context, d Descriptor) error

	// OnDenied is invoked when an evaluation ends not granted through the
	// restricted or still-denied branches.
	OnDenied(ctx context.Context, d Descriptor) error

	// OnPermanentlyDenied is invoked when the permission is permanently
	// denied. Implementations typically guide the user to system settings
	// (see native.OpenAppSettings); the coordinator never opens settings
	// itself.
	OnPermanentlyDenied(ctx context.Context, d Descriptor) error
}

// SurfaceFuncs adapts plain functions to the PromptSurface interface.
// Show and Close are mandatory; New rejects a SurfaceFuncs missing either.
// Denied and PermanentlyDenied may be nil, which means no-op.
type SurfaceFuncs struct {
	Show              func(ctx context.Context, d Descriptor) error
	Close             func(ctx context.Context, d Descriptor) error
	Denied            func(ctx context.Context, d Descriptor) error
	PermanentlyDenied func(ctx context.Context, d Descriptor) error
}

func (f SurfaceFuncs) ShowPrompt(ctx context.Context, d Descriptor) error {
	if f.Show == nil {
		return ErrIncompleteSurface
	}
	return f.Show(ctx, d)
}

func (f SurfaceFuncs) ClosePrompt(ctx context.Context, d Descriptor) error {
	if f.Close == nil {
		return ErrIncompleteSurface
	}
	return f.Close(ctx, d)
}

func (f SurfaceFuncs) OnDenied(ctx context.Context, d Descriptor) error {
	if f.Denied == nil {
		return nil
	}
	return f.Denied(ctx, d)
}

func (f SurfaceFuncs) OnPermanentlyDenied(ctx context.Context, d Descriptor) error {
	if f.PermanentlyDenied == nil {
		return nil
	}
	return f.PermanentlyDenied(ctx, d)
}

func (f SurfaceFuncs) validate() error {
	if f.Show == nil || f.Close == nil {
		return ErrIncompleteSurface
	}
	return nil
}
