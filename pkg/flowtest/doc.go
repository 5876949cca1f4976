// Package flowtest provides instrumented fakes for testing permission flows
// without a native engine: a scriptable Provider and a recording
// PromptSurface that share one ordered call log, so tests can assert both
// outcomes and sequencing (prompt shown before the request, one cycle at a
// time, and so on).
//
// # Quick Start
//
// Script statuses, run the coordinator, and assert on the log:
//
//	func TestCameraFlow(t *testing.T) {
//	    provider, surface, log := flowtest.New()
//	    provider.SetStatus(flow.Camera, flow.StatusDenied)
//	    provider.SetDecision(flow.Camera, flow.StatusGranted)
//
//	    c, err := flow.New(flow.Config{Provider: provider, Surface: surface})
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    granted, err := c.CheckAndRequest(context.Background(), flow.Descriptor{
//	        Permission: flow.Camera,
//	        Title:      "Camera",
//	    })
//	    if err != nil || !granted {
//	        t.Fatalf("granted = %v, err = %v", granted, err)
//	    }
//
//	    want := []string{"status camera", "show camera", "request camera", "close camera"}
//	    if got := log.Names(); !slices.Equal(got, want) {
//	        t.Errorf("calls = %v, want %v", got, want)
//	    }
//	}
//
// # Failure Injection
//
// Provider errors are scripted with SetStatusError and SetRequestError;
// surface callback failures are plain fields, set before the flow runs:
//
//	surface.CloseErr = errors.New("dialog stuck")
//
// The fakes only simulate the flow-facing contracts. For testing code that
// speaks the channel protocol itself, use native.SetupTestBridge instead.
package flowtest
