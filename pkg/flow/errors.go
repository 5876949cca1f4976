package flow

import "errors"

// Sentinel errors for coordinator construction and use.
var (
	// ErrNotConfigured is returned when a request operation is invoked on a
	// coordinator that was not built with New. Fails loudly rather than
	// silently skipping the prompt callbacks.
	ErrNotConfigured = errors.New("flow: coordinator not configured")

	// ErrNilProvider is returned by New when no permission provider is given.
	ErrNilProvider = errors.New("flow: permission provider is required")

	// ErrNilSurface is returned by New when no prompt surface is given.
	ErrNilSurface = errors.New("flow: prompt surface is required")

	// ErrIncompleteSurface is returned when a SurfaceFuncs is missing its
	// mandatory Show or Close function.
	ErrIncompleteSurface = errors.New("flow: surface requires show and close functions")
)
