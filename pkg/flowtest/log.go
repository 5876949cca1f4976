package flowtest

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/permissions/pkg/flow"
)

// Operation names recorded in a Log.
const (
	OpStatus            = "status"
	OpRequest           = "request"
	OpShow              = "show"
	OpClose             = "close"
	OpDenied            = "denied"
	OpPermanentlyDenied = "permanently-denied"
)

// Call is one recorded provider or surface invocation.
type Call struct {
	// Op is one of the Op constants.
	Op string

	// Permission identifies the descriptor the call was made for.
	Permission flow.ID

	// At is when the call was recorded.
	At time.Time
}

// String renders the call as "op permission", the form Names returns.
func (c Call) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Permission)
}

// Log records provider and surface calls in invocation order. The zero value
// is ready to use; New wires one Log into both fakes so cross-collaborator
// ordering can be asserted.
type Log struct {
	mu    sync.Mutex
	calls []Call
}

func (l *Log) record(op string, id flow.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Op: op, Permission: id, At: time.Now()})
}

// Calls returns a copy of every recorded call in order.
func (l *Log) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.calls...)
}

// Names returns the recorded calls as "op permission" strings, the most
// convenient form for ordering assertions.
func (l *Log) Names() []string {
	calls := l.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.String()
	}
	return names
}

// Count reports how many recorded calls have the given op.
func (l *Log) Count(op string) int {
	n := 0
	for _, c := range l.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards all recorded calls.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// New returns a Provider and Surface recording into the same fresh Log.
func New() (*Provider, *Surface, *Log) {
	log := &Log{}
	return NewProvider(log), NewSurface(log), log
}
