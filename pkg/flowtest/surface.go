package flowtest

import (
	"context"

	"github.com/go-drift/permissions/pkg/flow"
)

// Surface is a recording flow.PromptSurface. Callback failures are scripted
// through the exported error fields; set them before running a flow. The
// coordinator never calls surface methods concurrently, but the fields are
// not otherwise synchronized.
type Surface struct {
	// ShowErr, CloseErr, DeniedErr, and PermanentlyDeniedErr are returned by
	// the corresponding callback when non-nil.
	ShowErr              error
	CloseErr             error
	DeniedErr            error
	PermanentlyDeniedErr error

	log *Log
}

var _ flow.PromptSurface = (*Surface)(nil)

// NewSurface returns a Surface recording into log. A nil log allocates a
// private one, reachable via Log.
func NewSurface(log *Log) *Surface {
	if log == nil {
		log = &Log{}
	}
	return &Surface{log: log}
}

// Log returns the call log this surface records into.
func (s *Surface) Log() *Log {
	return s.log
}

// Shown reports how many times the prompt was shown for a permission.
func (s *Surface) Shown(id flow.ID) int {
	n := 0
	for _, c := range s.log.Calls() {
		if c.Op == OpShow && c.Permission == id {
			n++
		}
	}
	return n
}

func (s *Surface) ShowPrompt(_ context.Context, d flow.Descriptor) error {
	s.log.record(OpShow, d.Permission)
	return s.ShowErr
}

func (s *Surface) ClosePrompt(_ context.Context, d flow.Descriptor) error {
	s.log.record(OpClose, d.Permission)
	return s.CloseErr
}

func (s *Surface) OnDenied(_ context.Context, d flow.Descriptor) error {
	s.log.record(OpDenied, d.Permission)
	return s.DeniedErr
}

func (s *Surface) OnPermanentlyDenied(_ context.Context, d flow.Descriptor) error {
	s.log.record(OpPermanentlyDenied, d.Permission)
	return s.PermanentlyDeniedErr
}
