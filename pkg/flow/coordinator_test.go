package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	perrors "github.com/go-drift/permissions/pkg/errors"
	"github.com/go-drift/permissions/pkg/journal"
)

// callLog records provider and surface invocations in order, shared between
// the fakes so cross-collaborator ordering can be asserted.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, c := range l.snapshot() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func assertCalls(t *testing.T, log *callLog, want ...string) {
	t.Helper()
	got := log.snapshot()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (full log: %v)", i, got[i], want[i], got)
		}
	}
}

type fakeProvider struct {
	log      *callLog
	statuses map[ID]Status
	afterReq map[ID]Status

	statusErr  error
	requestErr error
}

func (p *fakeProvider) Status(_ context.Context, id ID) (Status, error) {
	p.log.add("status %s", id)
	if p.statusErr != nil {
		return StatusUnknown, p.statusErr
	}
	if s, ok := p.statuses[id]; ok {
		return s, nil
	}
	return StatusUnknown, nil
}

func (p *fakeProvider) Request(_ context.Context, id ID) (Status, error) {
	p.log.add("request %s", id)
	if p.requestErr != nil {
		return StatusUnknown, p.requestErr
	}
	result := StatusDenied
	if s, ok := p.afterReq[id]; ok {
		result = s
	}
	if p.statuses == nil {
		p.statuses = make(map[ID]Status)
	}
	p.statuses[id] = result
	return result, nil
}

type recordingSurface struct {
	log *callLog

	showErr   error
	closeErr  error
	deniedErr error
	permErr   error
}

func (s *recordingSurface) ShowPrompt(_ context.Context, d Descriptor) error {
	s.log.add("show %s", d.Permission)
	return s.showErr
}

func (s *recordingSurface) ClosePrompt(_ context.Context, d Descriptor) error {
	s.log.add("close %s", d.Permission)
	return s.closeErr
}

func (s *recordingSurface) OnDenied(_ context.Context, d Descriptor) error {
	s.log.add("denied %s", d.Permission)
	return s.deniedErr
}

func (s *recordingSurface) OnPermanentlyDenied(_ context.Context, d Descriptor) error {
	s.log.add("permanently-denied %s", d.Permission)
	return s.permErr
}

func newTestCoordinator(t *testing.T, cfg Config) *Coordinator {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCheckAndRequestDecisionTable(t *testing.T) {
	camera := Descriptor{Permission: Camera, Title: "Camera"}

	tests := []struct {
		name         string
		initial      Status
		afterRequest Status
		wantGranted  bool
		wantCalls    []string
	}{
		{
			name:        "granted returns true without UI",
			initial:     StatusGranted,
			wantGranted: true,
			wantCalls:   []string{"status camera"},
		},
		{
			name:        "limited counts as granted",
			initial:     StatusLimited,
			wantGranted: true,
			wantCalls:   []string{"status camera"},
		},
		{
			name:        "restricted fires denied callback without prompt",
			initial:     StatusRestricted,
			wantGranted: false,
			wantCalls:   []string{"status camera", "denied camera"},
		},
		{
			name:        "permanently denied fires dedicated callback without prompt",
			initial:     StatusPermanentlyDenied,
			wantGranted: false,
			wantCalls:   []string{"status camera", "permanently-denied camera"},
		},
		{
			name:         "denied then granted",
			initial:      StatusDenied,
			afterRequest: StatusGranted,
			wantGranted:  true,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera"},
		},
		{
			name:         "denied then limited",
			initial:      StatusDenied,
			afterRequest: StatusLimited,
			wantGranted:  true,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera"},
		},
		{
			name:         "denied then still denied",
			initial:      StatusDenied,
			afterRequest: StatusDenied,
			wantGranted:  false,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera", "denied camera"},
		},
		{
			name:         "denied then permanently denied fires denied callback",
			initial:      StatusDenied,
			afterRequest: StatusPermanentlyDenied,
			wantGranted:  false,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera", "denied camera"},
		},
		{
			name:         "unknown then granted",
			initial:      StatusUnknown,
			afterRequest: StatusGranted,
			wantGranted:  true,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera"},
		},
		{
			name:         "unknown then still denied",
			initial:      StatusUnknown,
			afterRequest: StatusDenied,
			wantGranted:  false,
			wantCalls:    []string{"status camera", "show camera", "request camera", "close camera", "denied camera"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &callLog{}
			provider := &fakeProvider{
				log:      log,
				statuses: map[ID]Status{Camera: tt.initial},
				afterReq: map[ID]Status{Camera: tt.afterRequest},
			}
			surface := &recordingSurface{log: log}
			c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

			granted, err := c.CheckAndRequest(context.Background(), camera)
			if err != nil {
				t.Fatalf("CheckAndRequest: %v", err)
			}
			if granted != tt.wantGranted {
				t.Errorf("granted = %v, want %v", granted, tt.wantGranted)
			}
			assertCalls(t, log, tt.wantCalls...)
		})
	}
}

func TestCheckAndRequestIdempotentWhenGranted(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusGranted}}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	for i := 0; i < 2; i++ {
		granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
		if err != nil || !granted {
			t.Fatalf("call %d: granted = %v, err = %v", i, granted, err)
		}
	}
	assertCalls(t, log, "status camera", "status camera")
}

func TestCheckAndRequestGrantAfterPromptThenRecheck(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{
		log:      log,
		statuses: map[ID]Status{Microphone: StatusDenied},
		afterReq: map[ID]Status{Microphone: StatusGranted},
	}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Microphone})
	if err != nil || !granted {
		t.Fatalf("first call: granted = %v, err = %v", granted, err)
	}

	// The grant stuck; the second call short-circuits with no UI.
	granted, err = c.CheckAndRequest(context.Background(), Descriptor{Permission: Microphone})
	if err != nil || !granted {
		t.Fatalf("second call: granted = %v, err = %v", granted, err)
	}
	assertCalls(t, log,
		"status microphone", "show microphone", "request microphone", "close microphone",
		"status microphone")
}

func TestCheckAndRequestUnrecognizedStatus(t *testing.T) {
	handler := &captureHandler{}
	perrors.SetHandler(handler)
	t.Cleanup(func() { perrors.SetHandler(nil) })

	log := &callLog{}
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: Status("mystery")}}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if err != nil {
		t.Fatalf("CheckAndRequest: %v", err)
	}
	if granted {
		t.Error("unrecognized status treated as granted")
	}
	assertCalls(t, log, "status camera", "denied camera")

	reported := handler.errorsSeen()
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	if reported[0].Kind != perrors.KindParsing {
		t.Errorf("reported kind = %v, want %v", reported[0].Kind, perrors.KindParsing)
	}
	if reported[0].Permission != "camera" {
		t.Errorf("reported permission = %q, want %q", reported[0].Permission, "camera")
	}
}

func TestCheckAndRequestStatusError(t *testing.T) {
	log := &callLog{}
	statusErr := errors.New("bridge gone")
	provider := &fakeProvider{log: log, statusErr: statusErr}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on status error")
	}
	if !errors.Is(err, statusErr) {
		t.Errorf("err = %v, want wrapped %v", err, statusErr)
	}
	assertCalls(t, log, "status camera")
}

func TestCheckAndRequestRequestErrorStillCloses(t *testing.T) {
	log := &callLog{}
	requestErr := errors.New("native request failed")
	provider := &fakeProvider{
		log:        log,
		statuses:   map[ID]Status{Camera: StatusDenied},
		requestErr: requestErr,
	}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on request error")
	}
	if !errors.Is(err, requestErr) {
		t.Errorf("err = %v, want wrapped %v", err, requestErr)
	}
	// Prompt still dismissed; no denial callback on an indeterminate outcome.
	assertCalls(t, log, "status camera", "show camera", "request camera", "close camera")
}

func TestCheckAndRequestShowErrorSkipsRequest(t *testing.T) {
	log := &callLog{}
	showErr := errors.New("dialog mount failed")
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusDenied}}
	surface := &recordingSurface{log: log, showErr: showErr}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on show error")
	}
	if !errors.Is(err, showErr) {
		t.Errorf("err = %v, want wrapped %v", err, showErr)
	}
	// The prompt never appeared, so it must not be closed.
	assertCalls(t, log, "status camera", "show camera")
}

func TestCheckAndRequestCloseErrorAfterGrant(t *testing.T) {
	log := &callLog{}
	closeErr := errors.New("dialog unmount failed")
	provider := &fakeProvider{
		log:      log,
		statuses: map[ID]Status{Camera: StatusDenied},
		afterReq: map[ID]Status{Camera: StatusGranted},
	}
	surface := &recordingSurface{log: log, closeErr: closeErr}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true when close failed")
	}
	if !errors.Is(err, closeErr) {
		t.Errorf("err = %v, want wrapped %v", err, closeErr)
	}
	assertCalls(t, log, "status camera", "show camera", "request camera", "close camera")
}

func TestCheckAndRequestRequestAndCloseBothFail(t *testing.T) {
	log := &callLog{}
	requestErr := errors.New("native request failed")
	closeErr := errors.New("dialog unmount failed")
	provider := &fakeProvider{
		log:        log,
		statuses:   map[ID]Status{Camera: StatusDenied},
		requestErr: requestErr,
	}
	surface := &recordingSurface{log: log, closeErr: closeErr}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	_, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if !errors.Is(err, requestErr) {
		t.Errorf("err = %v, want wrapped %v", err, requestErr)
	}
	if !errors.Is(err, closeErr) {
		t.Errorf("err = %v, want wrapped %v", err, closeErr)
	}
	assertCalls(t, log, "status camera", "show camera", "request camera", "close camera")
}

func TestCheckAndRequestDeniedCallbackError(t *testing.T) {
	log := &callLog{}
	deniedErr := errors.New("toast failed")
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusRestricted}}
	surface := &recordingSurface{log: log, deniedErr: deniedErr}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on restricted")
	}
	if !errors.Is(err, deniedErr) {
		t.Errorf("err = %v, want wrapped %v", err, deniedErr)
	}
}

func TestCheckAndRequestPermanentlyDeniedCallbackError(t *testing.T) {
	log := &callLog{}
	permErr := errors.New("settings redirect failed")
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusPermanentlyDenied}}
	surface := &recordingSurface{log: log, permErr: permErr}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on permanently denied")
	}
	if !errors.Is(err, permErr) {
		t.Errorf("err = %v, want wrapped %v", err, permErr)
	}
}

func TestCheckAndRequestTimeout(t *testing.T) {
	log := &callLog{}
	provider := &stallingProvider{log: log}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{
		Provider:       provider,
		Surface:        surface,
		RequestTimeout: 20 * time.Millisecond,
	})

	granted, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if granted {
		t.Error("granted = true on timed-out request")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want %v", err, context.DeadlineExceeded)
	}
	// The prompt is still dismissed after the deadline fires.
	assertCalls(t, log, "status camera", "show camera", "request camera", "close camera")
}

// stallingProvider reports denied and then blocks in Request until the
// context is done.
type stallingProvider struct {
	log *callLog
}

func (p *stallingProvider) Status(_ context.Context, id ID) (Status, error) {
	p.log.add("status %s", id)
	return StatusDenied, nil
}

func (p *stallingProvider) Request(ctx context.Context, id ID) (Status, error) {
	p.log.add("request %s", id)
	<-ctx.Done()
	return StatusUnknown, ctx.Err()
}

func TestZeroValueCoordinatorFailsLoudly(t *testing.T) {
	var c Coordinator

	_, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("CheckAndRequest err = %v, want %v", err, ErrNotConfigured)
	}

	_, err = c.CheckAndRequestBatch(context.Background(), []Descriptor{{Permission: Camera}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("CheckAndRequestBatch err = %v, want %v", err, ErrNotConfigured)
	}
}

func TestNewValidation(t *testing.T) {
	provider := &fakeProvider{log: &callLog{}}
	show := func(context.Context, Descriptor) error { return nil }

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "nil provider",
			cfg:     Config{Surface: &recordingSurface{log: &callLog{}}},
			wantErr: ErrNilProvider,
		},
		{
			name:    "nil surface",
			cfg:     Config{Provider: provider},
			wantErr: ErrNilSurface,
		},
		{
			name:    "surface funcs missing show",
			cfg:     Config{Provider: provider, Surface: SurfaceFuncs{Close: show}},
			wantErr: ErrIncompleteSurface,
		},
		{
			name:    "surface funcs missing close",
			cfg:     Config{Provider: provider, Surface: SurfaceFuncs{Show: show}},
			wantErr: ErrIncompleteSurface,
		},
		{
			name:    "nil surface funcs pointer",
			cfg:     Config{Provider: provider, Surface: (*SurfaceFuncs)(nil)},
			wantErr: ErrNilSurface,
		},
		{
			name: "complete surface funcs",
			cfg:  Config{Provider: provider, Surface: SurfaceFuncs{Show: show, Close: show}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && c == nil {
				t.Fatal("New returned nil coordinator without error")
			}
		})
	}
}

func TestNewDefaultTimeout(t *testing.T) {
	provider := &fakeProvider{log: &callLog{}}
	surface := &recordingSurface{log: &callLog{}}

	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})
	if c.timeout != DefaultRequestTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultRequestTimeout)
	}

	c = newTestCoordinator(t, Config{Provider: provider, Surface: surface, RequestTimeout: -1})
	if c.timeout != -1 {
		t.Errorf("timeout = %v, want -1", c.timeout)
	}
}

func TestBatchDeniedOrderAndSequencing(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{
		log: log,
		statuses: map[ID]Status{
			Camera:     StatusDenied,
			Microphone: StatusPermanentlyDenied,
		},
		afterReq: map[ID]Status{Camera: StatusGranted},
	}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	descriptors := []Descriptor{
		{Permission: Camera, Title: "Camera"},
		{Permission: Microphone, Title: "Microphone"},
	}
	result, err := c.CheckAndRequestBatch(context.Background(), descriptors)
	if err != nil {
		t.Fatalf("CheckAndRequestBatch: %v", err)
	}
	if result.AllGranted {
		t.Error("AllGranted = true, want false")
	}
	if len(result.Denied) != 1 || result.Denied[0].Permission != Microphone {
		t.Errorf("Denied = %v, want [microphone]", result.Denied)
	}

	// Camera's full prompt cycle completes before microphone is evaluated.
	assertCalls(t, log,
		"status camera", "show camera", "request camera", "close camera",
		"status microphone", "permanently-denied microphone")
}

func TestBatchAllGranted(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Storage: StatusGranted}}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	result, err := c.CheckAndRequestBatch(context.Background(), []Descriptor{{Permission: Storage}})
	if err != nil {
		t.Fatalf("CheckAndRequestBatch: %v", err)
	}
	if !result.AllGranted {
		t.Error("AllGranted = false, want true")
	}
	if len(result.Denied) != 0 {
		t.Errorf("Denied = %v, want empty", result.Denied)
	}
	if n := log.count("show"); n != 0 {
		t.Errorf("prompt shown %d times, want 0", n)
	}
}

func TestBatchEmpty(t *testing.T) {
	c := newTestCoordinator(t, Config{
		Provider: &fakeProvider{log: &callLog{}},
		Surface:  &recordingSurface{log: &callLog{}},
	})

	result, err := c.CheckAndRequestBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("CheckAndRequestBatch: %v", err)
	}
	if !result.AllGranted {
		t.Error("AllGranted = false for empty batch")
	}
}

func TestBatchPreservesInputOrder(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{
		log: log,
		statuses: map[ID]Status{
			Contacts:      StatusRestricted,
			Calendar:      StatusGranted,
			Location:      StatusPermanentlyDenied,
			Notifications: StatusDenied,
		},
		afterReq: map[ID]Status{Notifications: StatusDenied},
	}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	descriptors := []Descriptor{
		{Permission: Contacts},
		{Permission: Calendar},
		{Permission: Location},
		{Permission: Notifications},
	}
	result, err := c.CheckAndRequestBatch(context.Background(), descriptors)
	if err != nil {
		t.Fatalf("CheckAndRequestBatch: %v", err)
	}

	want := []ID{Contacts, Location, Notifications}
	if len(result.Denied) != len(want) {
		t.Fatalf("Denied = %v, want %v", result.Denied, want)
	}
	for i, id := range want {
		if result.Denied[i].Permission != id {
			t.Errorf("Denied[%d] = %s, want %s", i, result.Denied[i].Permission, id)
		}
	}
}

func TestBatchAbortsOnError(t *testing.T) {
	log := &callLog{}
	requestErr := errors.New("native request failed")
	provider := &fakeProvider{
		log: log,
		statuses: map[ID]Status{
			Camera:     StatusGranted,
			Microphone: StatusDenied,
			Storage:    StatusGranted,
		},
		requestErr: requestErr,
	}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	descriptors := []Descriptor{
		{Permission: Camera},
		{Permission: Microphone},
		{Permission: Storage},
	}
	result, err := c.CheckAndRequestBatch(context.Background(), descriptors)
	if !errors.Is(err, requestErr) {
		t.Fatalf("err = %v, want wrapped %v", err, requestErr)
	}
	if result.AllGranted {
		t.Error("AllGranted = true on aborted batch")
	}
	if n := log.count("status storage"); n != 0 {
		t.Error("batch continued past the failing descriptor")
	}
}

func TestBatchHonorsContext(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusGranted}}
	surface := &recordingSurface{log: log}
	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.CheckAndRequestBatch(ctx, []Descriptor{{Permission: Camera}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want %v", err, context.Canceled)
	}
	if len(result.Denied) != 0 {
		t.Errorf("Denied = %v, want empty", result.Denied)
	}
	assertCalls(t, log)
}

func TestJournalRecordsEvaluation(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{
		log:      log,
		statuses: map[ID]Status{Camera: StatusDenied},
		afterReq: map[ID]Status{Camera: StatusGranted},
	}
	surface := &recordingSurface{log: log}

	var mu sync.Mutex
	var events []journal.Event
	recorder := journal.RecorderFunc(func(_ context.Context, event journal.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	})

	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface, Journal: recorder})

	if _, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera, Title: "Camera"}); err != nil {
		t.Fatalf("CheckAndRequest: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	event := events[0]
	if event.Permission != "camera" || event.Title != "Camera" {
		t.Errorf("event identity = %q/%q", event.Permission, event.Title)
	}
	if event.Initial != "denied" || event.Final != "granted" {
		t.Errorf("event statuses = %q -> %q, want denied -> granted", event.Initial, event.Final)
	}
	if !event.Granted || !event.PromptShown {
		t.Errorf("event flags = granted %v, prompt %v", event.Granted, event.PromptShown)
	}
	if event.Callback != "" {
		t.Errorf("event callback = %q, want empty", event.Callback)
	}
	if event.Error != "" {
		t.Errorf("event error = %q, want empty", event.Error)
	}
	if event.Start.IsZero() || event.End.Before(event.Start) {
		t.Errorf("event window = %v..%v", event.Start, event.End)
	}
}

func TestJournalRecordsDenialCallback(t *testing.T) {
	log := &callLog{}
	provider := &fakeProvider{log: log, statuses: map[ID]Status{Camera: StatusPermanentlyDenied}}
	surface := &recordingSurface{log: log}

	var events []journal.Event
	recorder := journal.RecorderFunc(func(_ context.Context, event journal.Event) {
		events = append(events, event)
	})

	c := newTestCoordinator(t, Config{Provider: provider, Surface: surface, Journal: recorder})

	if _, err := c.CheckAndRequest(context.Background(), Descriptor{Permission: Camera}); err != nil {
		t.Fatalf("CheckAndRequest: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].Callback != journal.CallbackPermanentlyDenied {
		t.Errorf("callback = %q, want %q", events[0].Callback, journal.CallbackPermanentlyDenied)
	}
	if events[0].PromptShown {
		t.Error("PromptShown = true, want false")
	}
	if events[0].Granted {
		t.Error("Granted = true, want false")
	}
}

// captureHandler collects reported errors for assertions.
type captureHandler struct {
	mu     sync.Mutex
	errs   []*perrors.FlowError
	panics []*perrors.PanicError
}

func (h *captureHandler) HandleError(err *perrors.FlowError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *captureHandler) HandlePanic(err *perrors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *captureHandler) errorsSeen() []*perrors.FlowError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*perrors.FlowError(nil), h.errs...)
}
