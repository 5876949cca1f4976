package native

import (
	"context"
	"sync"

	"github.com/go-drift/permissions/pkg/errors"
	"github.com/go-drift/permissions/pkg/flow"
)

// Channel names served by the drift engine.
const (
	// MethodChannelName carries check/request/shouldShowRationale/openSettings
	// method calls.
	MethodChannelName = "drift/permissions"

	// EventChannelName carries permission status change events.
	EventChannelName = "drift/permissions/changes"
)

var (
	changesOnce    sync.Once
	changesChannel *EventChannel
)

// permissionChanges returns the shared status change event channel. Shared so
// every Provider observes the same stream registration.
func permissionChanges() *EventChannel {
	changesOnce.Do(func() {
		changesChannel = NewEventChannel(EventChannelName)
	})
	return changesChannel
}

// Provider implements flow.Provider over the engine's permission channels.
//
// Context usage: Status accepts a context for API consistency but the
// underlying bridge call is not cancelable. Request honors cancellation and
// deadlines while waiting for the user's decision.
type Provider struct {
	channel *MethodChannel
	changes *EventChannel

	// requestMu serializes requests: only one system dialog at a time.
	requestMu sync.Mutex
}

var _ flow.Provider = (*Provider)(nil)

// NewProvider returns a Provider speaking to the engine's permission channels.
func NewProvider() *Provider {
	return &Provider{
		channel: NewMethodChannel(MethodChannelName),
		changes: permissionChanges(),
	}
}

// Status returns the current status of the permission.
func (p *Provider) Status(ctx context.Context, id flow.ID) (flow.Status, error) {
	result, err := p.channel.Invoke("check", map[string]any{
		"permission": string(id),
	})
	if err != nil {
		return flow.StatusUnknown, err
	}
	return parseStatusPayload(result), nil
}

// Request asks the user for the permission and blocks until they respond,
// the context is canceled, or its deadline passes. If the permission is
// already in a terminal state, it returns immediately without showing a
// dialog.
func (p *Provider) Request(ctx context.Context, id flow.ID) (flow.Status, error) {
	p.requestMu.Lock()
	defer p.requestMu.Unlock()

	current, err := p.Status(ctx, id)
	if err != nil {
		return flow.StatusUnknown, err
	}
	if isTerminal(current) {
		return current, nil
	}

	// Subscribe before triggering the native request to avoid losing the
	// decision event to a race.
	resultChan := make(chan flow.Status, 1)
	sub := p.changes.Listen(EventHandler{
		OnEvent: func(data any) {
			change, ok := parseChange(data)
			if !ok {
				reportParseFailure("native.Request", data)
				return
			}
			if change.Permission == string(id) {
				select {
				case resultChan <- change.Status:
				default:
				}
			}
		},
		OnError: func(err error) {
			errors.Report(&errors.FlowError{
				Op:         "native.Request",
				Kind:       errors.KindProvider,
				Permission: string(id),
				Channel:    EventChannelName,
				Err:        err,
			})
		},
	})
	defer sub.Cancel()

	if _, err := p.channel.Invoke("request", map[string]any{
		"permission": string(id),
	}); err != nil {
		return flow.StatusUnknown, err
	}

	select {
	case result := <-resultChan:
		return result, nil
	case <-ctx.Done():
		// Re-check in case the decision landed but we missed the event.
		if final, err := p.Status(ctx, id); err == nil && isTerminal(final) {
			return final, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return flow.StatusUnknown, ErrTimeout
		}
		return flow.StatusUnknown, ErrCanceled
	}
}

// ShouldShowRationale reports whether the app should explain the permission
// before requesting it. Android-specific; always false on iOS.
func (p *Provider) ShouldShowRationale(ctx context.Context, id flow.ID) (bool, error) {
	result, err := p.channel.Invoke("shouldShowRationale", map[string]any{
		"permission": string(id),
	})
	if err != nil {
		return false, err
	}
	if m := parseMap(result); m != nil {
		return parseBool(m["shouldShow"]), nil
	}
	return false, nil
}

// Watch subscribes to status changes for one permission. The handler runs on
// the host's event delivery goroutine. Call the returned function to stop.
func (p *Provider) Watch(id flow.ID, handler func(flow.Status)) (unsubscribe func()) {
	sub := p.changes.Listen(EventHandler{
		OnEvent: func(data any) {
			change, ok := parseChange(data)
			if !ok {
				reportParseFailure("native.Watch", data)
				return
			}
			if change.Permission == string(id) {
				handler(change.Status)
			}
		},
		OnError: func(err error) {
			errors.Report(&errors.FlowError{
				Op:         "native.Watch",
				Kind:       errors.KindProvider,
				Permission: string(id),
				Channel:    EventChannelName,
				Err:        err,
			})
		},
	})
	return sub.Cancel
}

// isTerminal reports whether a status will not change from showing another
// permission dialog.
func isTerminal(status flow.Status) bool {
	switch status {
	case flow.StatusGranted, flow.StatusPermanentlyDenied,
		flow.StatusRestricted, flow.StatusLimited:
		return true
	default:
		return false
	}
}

// normalizeStatus maps the engine's wire vocabulary onto flow statuses. The
// engine additionally distinguishes not-yet-asked (not_determined) and
// provisional notification grants; the flow treats the former as unknown and
// the latter as limited access. Unrecognized values pass through untouched so
// callers can handle them conservatively.
func normalizeStatus(raw string) flow.Status {
	switch raw {
	case "", "not_determined":
		return flow.StatusUnknown
	case "provisional":
		return flow.StatusLimited
	default:
		return flow.Status(raw)
	}
}

// parseStatusPayload extracts a status from a check/request reply of the
// form {"status": "..."}.
func parseStatusPayload(result any) flow.Status {
	if m := parseMap(result); m != nil {
		if status := parseString(m["status"]); status != "" {
			return normalizeStatus(status)
		}
	}
	return flow.StatusUnknown
}

// statusChange is a decoded status change event.
type statusChange struct {
	Permission string
	Status     flow.Status
}

// parseChange decodes a change event of the form
// {"permission": "...", "status": "..."}.
func parseChange(data any) (statusChange, bool) {
	m := parseMap(data)
	if m == nil {
		return statusChange{}, false
	}
	permission := parseString(m["permission"])
	if permission == "" {
		return statusChange{}, false
	}
	return statusChange{
		Permission: permission,
		Status:     normalizeStatus(parseString(m["status"])),
	}, true
}

func reportParseFailure(op string, data any) {
	errors.Report(&errors.FlowError{
		Op:      op,
		Kind:    errors.KindParsing,
		Channel: EventChannelName,
		Err: &errors.ParseError{
			Channel:  EventChannelName,
			DataType: "statusChange",
			Got:      data,
		},
	})
}
