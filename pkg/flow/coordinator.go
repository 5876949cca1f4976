// Package flow coordinates guided permission request flows: it checks a
// permission's status through a Provider, walks the caller's PromptSurface
// through show/close around the native request, and reports denial outcomes
// through the surface's denial callbacks.
//
// The coordinator is a decision table over the Status enumeration, not a
// scheduler: it holds no queues, performs no retries, and persists nothing.
package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/permissions/pkg/errors"
	"github.com/go-drift/permissions/pkg/journal"
)

// DefaultRequestTimeout bounds how long a single provider request may wait
// for the user's decision when Config.RequestTimeout is zero.
const DefaultRequestTimeout = 30 * time.Second

// Config assembles a Coordinator. Provider and Surface are required; the
// rest is optional.
type Config struct {
	// Provider reports and requests permission state.
	Provider Provider

	// Surface renders the prompt UI and receives denial callbacks.
	Surface PromptSurface

	// Journal, when set, receives one event per completed evaluation.
	Journal journal.Recorder

	// RequestTimeout bounds each provider request. Zero means
	// DefaultRequestTimeout; negative disables the bound.
	RequestTimeout time.Duration
}

// Coordinator runs permission request flows against an immutable
// configuration. Construct with New; the zero value fails every operation
// with ErrNotConfigured.
//
// A Coordinator is safe for concurrent use. Only one prompt cycle runs at a
// time process-wide per coordinator, because overlapping prompts would be
// visually ambiguous and the native request primitive is not guaranteed safe
// for concurrent invocation.
type Coordinator struct {
	provider Provider
	surface  PromptSurface
	journal  journal.Recorder
	timeout  time.Duration

	// promptMu serializes the show/request/close window.
	promptMu sync.Mutex
}

// New validates cfg and returns a ready Coordinator. The configuration is
// fixed for the coordinator's lifetime; to change callbacks, construct a new
// one.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Provider == nil {
		return nil, ErrNilProvider
	}
	if cfg.Surface == nil {
		return nil, ErrNilSurface
	}
	switch s := cfg.Surface.(type) {
	case SurfaceFuncs:
		if err := s.validate(); err != nil {
			return nil, err
		}
	case *SurfaceFuncs:
		if s == nil {
			return nil, ErrNilSurface
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	return &Coordinator{
		provider: cfg.Provider,
		surface:  cfg.Surface,
		journal:  cfg.Journal,
		timeout:  timeout,
	}, nil
}

// CheckAndRequest evaluates a single permission. It returns true when the
// permission ends up granted (or limited), showing the prompt surface and
// issuing a provider request only when the current status is denied or
// unknown. At most one of OnDenied/OnPermanentlyDenied fires per call, and
// only on a not-granted outcome.
func (c *Coordinator) CheckAndRequest(ctx context.Context, d Descriptor) (bool, error) {
	if c == nil || c.provider == nil || c.surface == nil {
		return false, ErrNotConfigured
	}

	start := time.Now()
	var ev evaluation
	granted, err := c.evaluate(ctx, d, &ev)
	c.record(ctx, d, &ev, granted, err, start)
	return granted, err
}

// BatchResult aggregates a batch run. Denied preserves the input order of
// the descriptors whose individual evaluation returned false.
type BatchResult struct {
	AllGranted bool
	Denied     []Descriptor
}

// CheckAndRequestBatch evaluates descriptors strictly in order, one full
// show/request/close cycle at a time; descriptor N+1 never begins before
// descriptor N completes. The context is consulted between descriptors, never
// mid-cycle. The first hard error aborts the run and returns the partial
// result alongside the error.
func (c *Coordinator) CheckAndRequestBatch(ctx context.Context, descriptors []Descriptor) (BatchResult, error) {
	if c == nil || c.provider == nil || c.surface == nil {
		return BatchResult{}, ErrNotConfigured
	}

	var result BatchResult
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		granted, err := c.CheckAndRequest(ctx, d)
		if err != nil {
			return result, err
		}
		if !granted {
			result.Denied = append(result.Denied, d)
		}
	}
	result.AllGranted = len(result.Denied) == 0
	return result, nil
}

// evaluation captures what happened during a single flow for the journal.
type evaluation struct {
	initial  Status
	final    Status
	prompted bool
	callback string
}

func (c *Coordinator) evaluate(ctx context.Context, d Descriptor, ev *evaluation) (bool, error) {
	status, err := c.provider.Status(ctx, d.Permission)
	if err != nil {
		return false, fmt.Errorf("flow: status of %s: %w", d.Permission, err)
	}
	ev.initial, ev.final = status, status

	switch status {
	case StatusGranted, StatusLimited:
		return true, nil

	case StatusRestricted:
		return false, c.notifyDenied(ctx, d, ev)

	case StatusPermanentlyDenied:
		ev.callback = journal.CallbackPermanentlyDenied
		if err := c.surface.OnPermanentlyDenied(ctx, d); err != nil {
			return false, fmt.Errorf("flow: on-permanently-denied callback: %w", err)
		}
		return false, nil

	case StatusDenied, StatusUnknown:
		// Proceed to the prompt cycle below.

	default:
		// A status outside the recognized enumeration is never treated as
		// granted.
		errors.Report(&errors.FlowError{
			Op:         "flow.CheckAndRequest",
			Kind:       errors.KindParsing,
			Permission: string(d.Permission),
			Err:        &errors.ParseError{DataType: "Status", Got: string(status)},
		})
		return false, c.notifyDenied(ctx, d, ev)
	}

	result, err := c.promptAndRequest(ctx, d, ev)
	if err != nil {
		return false, err
	}
	ev.final = result
	if result.IsGranted() {
		return true, nil
	}
	return false, c.notifyDenied(ctx, d, ev)
}

// promptAndRequest runs the show -> request -> close window under the prompt
// mutex. ClosePrompt runs on every exit path once ShowPrompt has succeeded,
// including provider failures and panics; when both the request and the
// close fail, the two errors are joined.
func (c *Coordinator) promptAndRequest(ctx context.Context, d Descriptor, ev *evaluation) (status Status, err error) {
	c.promptMu.Lock()
	defer c.promptMu.Unlock()

	if showErr := c.surface.ShowPrompt(ctx, d); showErr != nil {
		return StatusUnknown, fmt.Errorf("flow: show prompt for %s: %w", d.Permission, showErr)
	}
	ev.prompted = true

	defer func() {
		closeErr := c.surface.ClosePrompt(ctx, d)
		if closeErr == nil {
			return
		}
		if err != nil {
			err = fmt.Errorf("%w; close prompt: %w", err, closeErr)
			return
		}
		status = StatusUnknown
		err = fmt.Errorf("flow: close prompt for %s: %w", d.Permission, closeErr)
	}()

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, reqErr := c.provider.Request(reqCtx, d.Permission)
	if reqErr != nil {
		return StatusUnknown, fmt.Errorf("flow: request %s: %w", d.Permission, reqErr)
	}
	return result, nil
}

func (c *Coordinator) notifyDenied(ctx context.Context, d Descriptor, ev *evaluation) error {
	ev.callback = journal.CallbackDenied
	if err := c.surface.OnDenied(ctx, d); err != nil {
		return fmt.Errorf("flow: on-denied callback: %w", err)
	}
	return nil
}

func (c *Coordinator) record(ctx context.Context, d Descriptor, ev *evaluation, granted bool, evalErr error, start time.Time) {
	if c.journal == nil {
		return
	}
	event := journal.Event{
		Permission:  string(d.Permission),
		Title:       d.Title,
		Initial:     string(ev.initial),
		Final:       string(ev.final),
		Granted:     granted,
		PromptShown: ev.prompted,
		Callback:    ev.callback,
		Start:       start,
		End:         time.Now(),
	}
	if evalErr != nil {
		event.Error = evalErr.Error()
	}
	c.journal.Record(ctx, event)
}
