// Package native speaks the drift engine's platform channel protocol for
// runtime permissions. It provides a flow.Provider backed by the engine's
// permission method channel and status change event stream, plus app
// settings deep-linking for permanently denied permissions.
//
// The host installs its engine bridge once via SetBridge; the engine
// delivers events through HandleEvent, HandleEventError, and
// HandleEventDone. Everything else is driven through Provider.
package native

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-drift/permissions/pkg/errors"
)

// Bridge is the host engine's side of the channel protocol. Implementations
// are provided by the embedding application, not by this library.
type Bridge interface {
	// InvokeMethod calls a method on the native side and blocks for the reply.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)

	// StartEventStream tells native to start sending events for a channel.
	StartEventStream(channel string) error

	// StopEventStream tells native to stop sending events for a channel.
	StopEventStream(channel string) error
}

// The bridge is process-global: the native side calls into this package by
// channel name and has no Go handle to scope it with.
var (
	bridgeMu sync.RWMutex
	bridge   Bridge

	registryMu    sync.RWMutex
	eventChannels = make(map[string]*EventChannel)
)

// SetBridge installs the engine bridge. Event channels that acquired
// subscribers before the bridge was available have their streams started
// now, so early Listen calls are not silently lost. Startup errors are
// dispatched to the subscribers' error handlers.
func SetBridge(b Bridge) {
	bridgeMu.Lock()
	bridge = b
	bridgeMu.Unlock()

	if b == nil {
		return
	}

	registryMu.RLock()
	channels := make([]*EventChannel, 0, len(eventChannels))
	for _, ch := range eventChannels {
		channels = append(channels, ch)
	}
	registryMu.RUnlock()

	for _, ch := range channels {
		ch.mu.Lock()
		shouldStart := len(ch.subscriptions) > 0 && !ch.started
		if shouldStart {
			ch.started = true
		}
		ch.mu.Unlock()

		if shouldStart {
			if err := startEventStream(ch.name); err != nil {
				ch.mu.Lock()
				ch.started = false
				ch.mu.Unlock()
				ch.dispatchError(err)
			}
		}
	}
}

func currentBridge() Bridge {
	bridgeMu.RLock()
	defer bridgeMu.RUnlock()
	return bridge
}

func registerEventChannel(name string, ch *EventChannel) {
	registryMu.Lock()
	eventChannels[name] = ch
	registryMu.Unlock()
}

func getEventChannel(name string) *EventChannel {
	registryMu.RLock()
	ch := eventChannels[name]
	registryMu.RUnlock()
	return ch
}

// invokeMethod calls a method on the native side.
func invokeMethod(channel, method string, args any) (any, error) {
	b := currentBridge()
	if b == nil {
		return nil, ErrBridgeUnavailable
	}

	argsData, err := DefaultCodec.Encode(args)
	if err != nil {
		return nil, err
	}

	resultData, err := b.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}

	return DefaultCodec.Decode(resultData)
}

// startEventStream notifies native to start sending events.
func startEventStream(channel string) error {
	b := currentBridge()
	if b == nil {
		errors.Report(&errors.FlowError{
			Op:      "native.startEventStream",
			Kind:    errors.KindProvider,
			Channel: channel,
			Err:     ErrBridgeUnavailable,
		})
		return ErrBridgeUnavailable
	}
	if err := b.StartEventStream(channel); err != nil {
		errors.Report(&errors.FlowError{
			Op:      "native.startEventStream",
			Kind:    errors.KindProvider,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	return nil
}

// stopEventStream notifies native to stop sending events. ErrClosed and a
// missing bridge are expected during teardown and not reported.
func stopEventStream(channel string) error {
	b := currentBridge()
	if b == nil {
		return ErrBridgeUnavailable
	}
	if err := b.StopEventStream(channel); err != nil {
		if !stderrors.Is(err, ErrClosed) {
			errors.Report(&errors.FlowError{
				Op:      "native.stopEventStream",
				Kind:    errors.KindProvider,
				Channel: channel,
				Err:     err,
			})
		}
		return err
	}
	return nil
}

// HandleEvent is called by the host when native sends an event.
func HandleEvent(channel string, eventData []byte) error {
	ch := getEventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		errors.Report(&errors.FlowError{
			Op:      "native.HandleEvent",
			Kind:    errors.KindProvider,
			Channel: channel,
			Err:     err,
		})
		return err
	}

	data, err := DefaultCodec.Decode(eventData)
	if err != nil {
		ch.dispatchError(err)
		return err
	}

	ch.dispatchEvent(data)
	return nil
}

// HandleEventError is called by the host when an event stream errors.
func HandleEventError(channel string, code, message string) error {
	ch := getEventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		errors.Report(&errors.FlowError{
			Op:      "native.HandleEventError",
			Kind:    errors.KindProvider,
			Channel: channel,
			Err:     err,
		})
		return err
	}

	ch.dispatchError(NewChannelError(code, message))
	return nil
}

// HandleEventDone is called by the host when an event stream ends.
func HandleEventDone(channel string) error {
	ch := getEventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		errors.Report(&errors.FlowError{
			Op:      "native.HandleEventDone",
			Kind:    errors.KindProvider,
			Channel: channel,
			Err:     err,
		})
		return err
	}

	ch.dispatchDone()
	return nil
}

// ResetForTest clears the bridge and all event subscriptions so the package
// behaves as if freshly initialized. Only call from tests.
func ResetForTest() {
	bridgeMu.Lock()
	bridge = nil
	bridgeMu.Unlock()

	registryMu.RLock()
	channels := make([]*EventChannel, 0, len(eventChannels))
	for _, ch := range eventChannels {
		channels = append(channels, ch)
	}
	registryMu.RUnlock()

	for _, ch := range channels {
		ch.mu.Lock()
		ch.subscriptions = ch.subscriptions[:0]
		ch.started = false
		ch.mu.Unlock()
	}
}
