package inspection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu       sync.Mutex
	hosts    []api.Host
	hostsErr error
	resp     api.InspectionResponse
	err      error
	block    chan struct{}
	entered  chan struct{}

	startCalls int
	lastReq    api.InspectionRequest
}

func (f *fakeBackend) ListHosts(context.Context) ([]api.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hosts, f.hostsErr
}

func (f *fakeBackend) StartInspection(_ context.Context, req api.InspectionRequest) (api.InspectionResponse, error) {
	f.mu.Lock()
	f.startCalls++
	f.lastReq = req
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return f.resp, f.err
}

type fakeTemplates struct {
	calls int
	err   error
}

func (f *fakeTemplates) Refresh(context.Context) error {
	f.calls++
	return f.err
}

func messages(entries []state.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e.Severity) + " " + e.Message
	}
	return out
}

func readySelection(d *Dispatcher, hosts ...string) {
	for _, h := range hosts {
		d.ToggleHost(h)
	}
	d.SetCommandTemplate("templates/commands/c.json")
	d.SetPromptTemplate("templates/prompts/p.txt")
}

func TestStartPreconditionsMakeNoCall(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*Dispatcher)
		notice string
	}{
		{
			name:   "no hosts",
			setup:  func(d *Dispatcher) { readySelection(d) },
			notice: "Please select at least one host",
		},
		{
			name: "no prompt",
			setup: func(d *Dispatcher) {
				d.ToggleHost("r1")
				d.SetCommandTemplate("templates/commands/c.json")
			},
			notice: "Please select command and prompt files",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			store := state.NewStore()
			d := New(store, backend, Options{})
			tt.setup(d)

			err := d.Start(context.Background())
			if !controller.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if backend.startCalls != 0 {
				t.Fatalf("expected no network call")
			}
			if len(d.Snapshot().Logs) != 0 {
				t.Fatalf("expected no log lines")
			}
			if got := store.Snapshot().Notice.Text; got != tt.notice {
				t.Fatalf("notice %q want %q", got, tt.notice)
			}
		})
	}
}

func TestStartLogsOutcomesInBackendOrder(t *testing.T) {
	backend := &fakeBackend{resp: api.InspectionResponse{
		Status: "success",
		Results: []api.HostResult{
			{Host: "r2", Status: "failed", Error: "timeout"},
			{Host: "r1", Status: "success", RawConfig: "output/raw/r1.txt", Report: "output/reports/r1.md"},
			{Host: "r3", Status: "error"},
		},
	}}
	d := New(state.NewStore(), backend, Options{})
	readySelection(d, "r1", "r2", "r3")

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	wantReq := api.InspectionRequest{
		Hosts:       []string{"r1", "r2", "r3"},
		CommandFile: "templates/commands/c.json",
		PromptFile:  "templates/prompts/p.txt",
	}
	if diff := cmp.Diff(wantReq, backend.lastReq); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}

	snap := d.Snapshot()
	want := []string{
		"info Starting inspection process...",
		"info Selected hosts: r1, r2, r3",
		"info Command file: templates/commands/c.json",
		"info Prompt file: templates/prompts/p.txt",
		"success Inspection started successfully",
		"error Host r2: Inspection failed - timeout",
		"success Host r1: Inspection completed",
		"info Raw config saved to: output/raw/r1.txt",
		"info Report generated at: output/reports/r1.md",
		"error Host r3: Inspection failed - unknown error",
	}
	if diff := cmp.Diff(want, messages(snap.Logs)); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
	if snap.Running || snap.RunID == "" {
		t.Fatalf("expected finished run with id, got running=%v id=%q", snap.Running, snap.RunID)
	}
}

func TestStartTopLevelFailureLogsSingleError(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		line    string
	}{
		{
			name: "status not success",
			backend: &fakeBackend{resp: api.InspectionResponse{
				Status:  "error",
				Message: "nornir init failed",
				Results: []api.HostResult{{Host: "r1", Status: "success"}},
			}},
			line: "error Error: nornir init failed",
		},
		{
			name:    "transport",
			backend: &fakeBackend{err: &api.CallFailure{Kind: api.KindTransport, Message: "request timed out"}},
			line:    "error Error: request timed out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.NewStore()
			d := New(store, tt.backend, Options{})
			readySelection(d, "r1")

			if err := d.Start(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			lines := messages(d.Snapshot().Logs)
			if len(lines) != 5 || lines[4] != tt.line {
				t.Fatalf("unexpected log %v", lines)
			}
			if store.Snapshot().Notice.Text != "Inspection failed" {
				t.Fatalf("unexpected notice %+v", store.Snapshot().Notice)
			}
			if d.Snapshot().Running {
				t.Fatal("expected dispatcher idle after failure")
			}
		})
	}
}

func TestSecondStartWhileRunningIsBusy(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{
		resp:    api.InspectionResponse{Status: "success"},
		block:   block,
		entered: make(chan struct{}, 1),
	}
	d := New(state.NewStore(), backend, Options{})
	readySelection(d, "r1")

	done := make(chan error, 1)
	go func() { done <- d.Start(context.Background()) }()
	<-backend.entered

	if !d.Snapshot().Running {
		t.Fatal("expected running")
	}
	if err := d.Start(context.Background()); !errors.Is(err, controller.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if backend.startCalls != 1 {
		t.Fatalf("expected one call, got %d", backend.startCalls)
	}
}

func TestLogsAccumulateAcrossRuns(t *testing.T) {
	backend := &fakeBackend{resp: api.InspectionResponse{Status: "success"}}
	d := New(state.NewStore(), backend, Options{})
	readySelection(d, "r1")

	for i := 0; i < 2; i++ {
		if err := d.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(d.Snapshot().Logs); n != 10 {
		t.Fatalf("expected 10 lines across two runs, got %d", n)
	}
}

func TestSelectionOrderAndToggle(t *testing.T) {
	d := New(state.NewStore(), &fakeBackend{}, Options{})
	d.ToggleHost("r3")
	d.ToggleHost("r1")
	d.ToggleHost("r2")
	d.ToggleHost("r1")
	if diff := cmp.Diff([]string{"r3", "r2"}, d.Snapshot().SelectedHosts); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	d.SetHosts([]string{" r2 ", "", "r2", "r9"})
	if diff := cmp.Diff([]string{"r2", "r9"}, d.Snapshot().SelectedHosts); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestReloadListingsFailIndependently(t *testing.T) {
	backend := &fakeBackend{hosts: []api.Host{{Name: "r1", IP: "10.0.0.1", Platform: "ios", Groups: []string{"core"}}}}
	templates := &fakeTemplates{err: errors.New("boom")}
	store := state.NewStore()
	d := New(store, backend, Options{Templates: templates})

	if err := d.Reload(context.Background()); err == nil {
		t.Fatal("expected template failure to surface")
	}
	want := []state.Device{{Name: "r1", IP: "10.0.0.1", Platform: "ios", Groups: []string{"core"}}}
	if diff := cmp.Diff(want, d.Snapshot().Devices); diff != "" {
		t.Fatalf("devices mismatch (-want +got):\n%s", diff)
	}

	backend.mu.Lock()
	backend.hostsErr = errors.New("down")
	backend.mu.Unlock()
	templates.err = nil
	if err := d.LoadDevices(context.Background()); err == nil {
		t.Fatal("expected host failure")
	}
	if len(d.Snapshot().Devices) != 1 {
		t.Fatal("expected devices kept after failure")
	}
	if store.Snapshot().Notice.Text != "Failed to load hosts list" {
		t.Fatalf("unexpected notice %+v", store.Snapshot().Notice)
	}
}
