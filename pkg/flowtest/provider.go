package flowtest

import (
	"context"
	"sync"

	"github.com/go-drift/permissions/pkg/flow"
)

// Provider is a scriptable flow.Provider. Statuses default to
// flow.StatusUnknown, the same as a platform that has never been asked;
// Request resolves to the scripted decision (default flow.StatusDenied) and
// stores it as the new status, like a real platform would.
type Provider struct {
	log *Log

	mu        sync.Mutex
	statuses  map[flow.ID]flow.Status
	decisions map[flow.ID]flow.Status

	statusErr  error
	requestErr error
}

var _ flow.Provider = (*Provider)(nil)

// NewProvider returns a Provider recording into log. A nil log allocates a
// private one, reachable via Log.
func NewProvider(log *Log) *Provider {
	if log == nil {
		log = &Log{}
	}
	return &Provider{
		log:       log,
		statuses:  make(map[flow.ID]flow.Status),
		decisions: make(map[flow.ID]flow.Status),
	}
}

// Log returns the call log this provider records into.
func (p *Provider) Log() *Log {
	return p.log
}

// SetStatus scripts the current status reported for a permission.
func (p *Provider) SetStatus(id flow.ID, status flow.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[id] = status
}

// SetDecision scripts what Request resolves to for a permission.
func (p *Provider) SetDecision(id flow.ID, status flow.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions[id] = status
}

// SetStatusError makes every Status call fail with err. Pass nil to clear.
func (p *Provider) SetStatusError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusErr = err
}

// SetRequestError makes every Request call fail with err. Pass nil to clear.
func (p *Provider) SetRequestError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestErr = err
}

// Status implements flow.Provider.
func (p *Provider) Status(_ context.Context, id flow.ID) (flow.Status, error) {
	p.log.record(OpStatus, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusErr != nil {
		return flow.StatusUnknown, p.statusErr
	}
	if status, ok := p.statuses[id]; ok {
		return status, nil
	}
	return flow.StatusUnknown, nil
}

// Request implements flow.Provider.
func (p *Provider) Request(_ context.Context, id flow.ID) (flow.Status, error) {
	p.log.record(OpRequest, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requestErr != nil {
		return flow.StatusUnknown, p.requestErr
	}
	decision, ok := p.decisions[id]
	if !ok {
		decision = flow.StatusDenied
	}
	p.statuses[id] = decision
	return decision, nil
}
