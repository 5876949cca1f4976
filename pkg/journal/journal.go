// Package journal records completed permission flow evaluations for UX
// analytics. The coordinator emits one Event per evaluation; a caller-supplied
// Recorder receives them. The Journal type adds buffered asynchronous
// dispatch so slow sinks never stall a prompt cycle.
//
// Nothing in this package is read back by the coordinator; the journal is
// write-only from the library's point of view.
package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/permissions/pkg/errors"
)

// Callback identifiers recorded on an Event.
const (
	CallbackDenied            = "denied"
	CallbackPermanentlyDenied = "permanently_denied"
)

// Event describes one completed permission evaluation. Fields are plain
// strings so sinks can serialize without importing the flow package.
type Event struct {
	// ID is a unique event identifier. The Journal assigns one when empty.
	ID string `json:"id"`

	// Permission is the permission identifier that was evaluated.
	Permission string `json:"permission"`

	// Title is the descriptor's user-facing title, if any.
	Title string `json:"title,omitempty"`

	// Initial is the status reported before any request was issued.
	Initial string `json:"initial_status"`

	// Final is the status the evaluation settled on.
	Final string `json:"final_status"`

	// Granted reports the boolean outcome returned to the caller.
	Granted bool `json:"granted"`

	// PromptShown reports whether the prompt surface was shown.
	PromptShown bool `json:"prompt_shown"`

	// Callback names the denial callback branch taken, if any.
	Callback string `json:"callback,omitempty"`

	// Error holds the evaluation error, if the flow failed.
	Error string `json:"error,omitempty"`

	// Start and End bound the evaluation.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Recorder receives journal events. Implementations must not retain the
// event beyond the call unless they copy it.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, event Event)

func (f RecorderFunc) Record(ctx context.Context, event Event) {
	f(ctx, event)
}

// Config tunes the asynchronous Journal.
type Config struct {
	// BufferSize is the event queue capacity. Values below 1 are raised to 1.
	BufferSize int

	// DropIfFull drops events (counted) instead of blocking the caller when
	// the buffer is full.
	DropIfFull bool
}

// Journal dispatches events to a sink on a dedicated goroutine. Construct
// with New and release with Close; a nil Journal is a safe no-op.
type Journal struct {
	cfg     Config
	sink    Recorder
	ch      chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool

	closeOnce sync.Once
}

// New starts a Journal writing to sink. A nil sink yields a nil Journal.
func New(cfg Config, sink Recorder) *Journal {
	if sink == nil {
		return nil
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}

	j := &Journal{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	j.wg.Add(1)
	go j.run()

	return j
}

func (j *Journal) run() {
	defer j.wg.Done()

	for {
		select {
		case event := <-j.ch:
			j.dispatch(event)
		case <-j.done:
			for {
				select {
				case event := <-j.ch:
					j.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

// dispatch delivers one event, surviving panicking sinks.
func (j *Journal) dispatch(event Event) {
	defer errors.Recover("journal.dispatch")
	j.sink.Record(context.Background(), event)
}

// Record enqueues an event, stamping a fresh ID when the event has none.
// After Close, events are silently discarded.
func (j *Journal) Record(ctx context.Context, event Event) {
	if j == nil || j.closed.Load() {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if j.cfg.DropIfFull {
		select {
		case j.ch <- event:
		case <-j.done:
		default:
			j.dropped.Add(1)
		}
		return
	}

	select {
	case j.ch <- event:
	case <-j.done:
	case <-ctx.Done():
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (j *Journal) Dropped() uint64 {
	if j == nil {
		return 0
	}
	return j.dropped.Load()
}

// Close drains buffered events and stops the dispatch goroutine. Safe to
// call more than once.
func (j *Journal) Close() {
	if j == nil {
		return
	}
	j.closeOnce.Do(func() {
		j.closed.Store(true)
		close(j.done)
		j.wg.Wait()
	})
}
