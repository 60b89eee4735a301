package configfiles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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
	mu        sync.Mutex
	files     []api.FileEntry
	listErr   error
	upload    api.UploadResponse
	uploadErr error
	validate  api.ValidationResponse
	valErr    error
	block     chan struct{}
	entered   chan struct{}

	listCalls     int
	uploadCalls   int
	validateCalls int
	uploadedType  state.Category
	uploadedName  string
}

func (f *fakeBackend) ListFiles(_ context.Context, dir string) ([]api.FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if dir != Directory {
		return nil, errors.New("unexpected directory " + dir)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.FileEntry(nil), f.files...), nil
}

func (f *fakeBackend) UploadConfig(_ context.Context, c state.Category, file api.File) (api.UploadResponse, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.uploadedType = c
	f.uploadedName = file.Name
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upload, f.uploadErr
}

func (f *fakeBackend) ValidateConfigs(context.Context) (api.ValidationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	return f.validate, f.valErr
}

func writeLocal(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("r1:\n  hostname: 10.0.0.1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRefreshAutoSelectsExactName(t *testing.T) {
	backend := &fakeBackend{files: []api.FileEntry{
		{Name: "hosts_backup.yaml", Path: "config/hosts_backup.yaml"},
		{Name: "hosts.yaml", Path: "config/hosts.yaml"},
		{Name: "Groups-lab.yml", Path: "config/Groups-lab.yml"},
	}}
	mgr := New(state.NewStore(), backend, Options{})

	if err := mgr.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := mgr.Snapshot()

	hosts := snap.Categories[state.CategoryHosts]
	if hosts.Selected != "config/hosts.yaml" {
		t.Fatalf("expected exact match selected, got %q", hosts.Selected)
	}
	wantHosts := []state.ExistingFile{
		{Name: "hosts_backup.yaml", Path: "config/hosts_backup.yaml"},
		{Name: "hosts.yaml", Path: "config/hosts.yaml"},
	}
	if diff := cmp.Diff(wantHosts, hosts.Files); diff != "" {
		t.Fatalf("hosts files mismatch (-want +got):\n%s", diff)
	}
	groups := snap.Categories[state.CategoryGroups]
	if len(groups.Files) != 1 || groups.Selected != "" {
		t.Fatalf("groups should match case-insensitively without auto-select: %+v", groups)
	}
	if mgr.Ready() {
		t.Fatalf("expected not ready with groups and defaults unset")
	}
}

func TestRefreshKeepsExistingSelection(t *testing.T) {
	backend := &fakeBackend{files: []api.FileEntry{
		{Name: "hosts.yaml", Path: "config/hosts.yaml"},
		{Name: "hosts_backup.yaml", Path: "config/hosts_backup.yaml"},
	}}
	mgr := New(state.NewStore(), backend, Options{})
	mgr.Select(state.CategoryHosts, "config/hosts_backup.yaml")

	if err := mgr.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := mgr.Snapshot().Categories[state.CategoryHosts].Selected; got != "config/hosts_backup.yaml" {
		t.Fatalf("selection overwritten: %q", got)
	}
}

func TestRefreshFailureKeepsPreviousLists(t *testing.T) {
	backend := &fakeBackend{files: []api.FileEntry{{Name: "defaults.yaml", Path: "config/defaults.yaml"}}}
	store := state.NewStore()
	mgr := New(store, backend, Options{})
	if err := mgr.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	backend.listErr = &api.CallFailure{Kind: api.KindTransport, Message: "connection refused"}
	if err := mgr.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if files := mgr.Snapshot().Categories[state.CategoryDefaults].Files; len(files) != 1 {
		t.Fatalf("expected previous list kept, got %v", files)
	}
	if n := store.Snapshot().Notice; n.Level != state.NoticeError || n.Text != "Failed to fetch existing configuration files" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestSelectAndPendingUploadAreExclusive(t *testing.T) {
	backend := &fakeBackend{upload: api.UploadResponse{Success: true}}
	mgr := New(state.NewStore(), backend, Options{})
	mgr.Select(state.CategoryGroups, "config/groups.yaml")

	// No stored path in the response: the upload stays pending.
	if err := mgr.Upload(context.Background(), state.CategoryGroups, writeLocal(t, "groups-new.yaml")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	cs := mgr.Snapshot().Categories[state.CategoryGroups]
	if cs.PendingUpload != "groups-new.yaml" || cs.Selected != "" {
		t.Fatalf("expected pending upload only, got %+v", cs)
	}

	mgr.Select(state.CategoryGroups, "config/groups.yaml")
	cs = mgr.Snapshot().Categories[state.CategoryGroups]
	if cs.PendingUpload != "" || cs.Selected != "config/groups.yaml" {
		t.Fatalf("expected selection only, got %+v", cs)
	}

	mgr.Select(state.CategoryGroups, "")
	if mgr.Snapshot().Categories[state.CategoryGroups].Ready() {
		t.Fatal("expected cleared category to be unready")
	}
}

func TestReadinessRequiresEveryCategory(t *testing.T) {
	mgr := New(state.NewStore(), &fakeBackend{}, Options{})
	for i, c := range state.Categories {
		if mgr.Ready() {
			t.Fatalf("ready after %d categories", i)
		}
		mgr.Select(c, "config/"+string(c)+".yaml")
	}
	if !mgr.Ready() {
		t.Fatal("expected ready once every category has a selection")
	}
	mgr.Select(state.CategoryDefaults, "")
	if mgr.Ready() {
		t.Fatal("expected unready after clearing defaults")
	}
}

func TestReadinessOverEveryCombination(t *testing.T) {
	type slot int
	const (
		empty slot = iota
		chosen
		uploading
		chosenThenUploading
	)
	slots := []slot{empty, chosen, uploading, chosenThenUploading}
	local := writeLocal(t, "upload.yaml")

	for _, a := range slots {
		for _, b := range slots {
			for _, c := range slots {
				combo := []slot{a, b, c}
				block := make(chan struct{})
				backend := &fakeBackend{
					upload:  api.UploadResponse{Success: true},
					block:   block,
					entered: make(chan struct{}, len(state.Categories)),
				}
				mgr := New(state.NewStore(), backend, Options{})

				want := true
				var wg sync.WaitGroup
				errs := make(chan error, len(state.Categories))
				for i, cat := range state.Categories {
					switch combo[i] {
					case empty:
						want = false
						continue
					case chosen, chosenThenUploading:
						mgr.Select(cat, "config/"+string(cat)+".yaml")
					}
					if combo[i] == chosen {
						continue
					}
					wg.Add(1)
					go func() {
						defer wg.Done()
						errs <- mgr.Upload(context.Background(), cat, local)
					}()
					<-backend.entered
				}

				inFlight := mgr.Ready()
				snap := mgr.Snapshot()
				close(block)
				wg.Wait()
				close(errs)
				for err := range errs {
					if err != nil {
						t.Fatalf("%v: upload: %v", combo, err)
					}
				}

				if inFlight != want {
					t.Fatalf("%v: Ready() = %v while uploading, want %v", combo, inFlight, want)
				}
				for i, cat := range state.Categories {
					cs := snap.Categories[cat]
					if cs.Selected != "" && cs.PendingUpload != "" {
						t.Fatalf("%v: %s has both a selection and a pending upload: %+v", combo, cat, cs)
					}
					if cs.Ready() != (combo[i] != empty) {
						t.Fatalf("%v: %s Ready() = %v", combo, cat, cs.Ready())
					}
				}
				if got := mgr.Ready(); got != want {
					t.Fatalf("%v: Ready() = %v after uploads finished, want %v", combo, got, want)
				}
			}
		}
	}
}

func TestUploadSuccessRefreshesAndSelectsStoredPath(t *testing.T) {
	backend := &fakeBackend{
		upload: api.UploadResponse{Success: true, Path: "config/hosts.yaml"},
		files:  []api.FileEntry{{Name: "hosts.yaml", Path: "config/hosts.yaml"}},
	}
	store := state.NewStore()
	mgr := New(store, backend, Options{})

	if err := mgr.Upload(context.Background(), state.CategoryHosts, writeLocal(t, "hosts.yaml")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if backend.uploadedType != state.CategoryHosts || backend.uploadedName != "hosts.yaml" {
		t.Fatalf("unexpected upload call %s %s", backend.uploadedType, backend.uploadedName)
	}
	if backend.listCalls != 1 {
		t.Fatalf("expected one refresh, got %d", backend.listCalls)
	}
	cs := mgr.Snapshot().Categories[state.CategoryHosts]
	want := state.CategoryState{
		Files:    []state.ExistingFile{{Name: "hosts.yaml", Path: "config/hosts.yaml"}},
		Selected: "config/hosts.yaml",
	}
	if diff := cmp.Diff(want, cs); diff != "" {
		t.Fatalf("category mismatch (-want +got):\n%s", diff)
	}
	if n := store.Snapshot().Notice; n.Text != "hosts.yaml uploaded successfully" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestUploadFailureRestoresPriorSelection(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		notice  string
	}{
		{
			name:    "payload failure",
			backend: &fakeBackend{upload: api.UploadResponse{Success: false, Error: "invalid yaml"}},
			notice:  "hosts.yaml upload failed: invalid yaml",
		},
		{
			name:    "rejection",
			backend: &fakeBackend{uploadErr: &api.CallFailure{Kind: api.KindRejection, Status: 400, Message: "bad type"}},
			notice:  "hosts.yaml upload failed: bad type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.NewStore()
			mgr := New(store, tt.backend, Options{})
			mgr.Select(state.CategoryHosts, "config/hosts_old.yaml")

			if err := mgr.Upload(context.Background(), state.CategoryHosts, writeLocal(t, "hosts.yaml")); err == nil {
				t.Fatal("expected upload error")
			}
			cs := mgr.Snapshot().Categories[state.CategoryHosts]
			if cs.Selected != "config/hosts_old.yaml" || cs.PendingUpload != "" || cs.Uploading {
				t.Fatalf("expected state restored, got %+v", cs)
			}
			if n := store.Snapshot().Notice; n.Text != tt.notice {
				t.Fatalf("notice %q want %q", n.Text, tt.notice)
			}
			if tt.backend.listCalls != 0 {
				t.Fatalf("failed upload should not refresh")
			}
		})
	}
}

func TestUploadRejectsNonYAMLWithoutCall(t *testing.T) {
	backend := &fakeBackend{}
	mgr := New(state.NewStore(), backend, Options{})
	err := mgr.Upload(context.Background(), state.CategoryHosts, writeLocal(t, "hosts.json"))
	if !controller.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.uploadCalls != 0 {
		t.Fatalf("expected no network call")
	}
}

type rejectAll struct{}

func (rejectAll) Check(path string) error { return errors.New("matched rule secret") }

func TestUploadScreeningRejection(t *testing.T) {
	backend := &fakeBackend{}
	mgr := New(state.NewStore(), backend, Options{Screener: rejectAll{}})
	err := mgr.Upload(context.Background(), state.CategoryHosts, writeLocal(t, "hosts.yaml"))
	if !controller.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.uploadCalls != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestUploadOverlapIsBusy(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{
		upload:  api.UploadResponse{Success: true},
		block:   block,
		entered: make(chan struct{}, 1),
	}
	mgr := New(state.NewStore(), backend, Options{})
	local := writeLocal(t, "hosts.yaml")

	done := make(chan error, 1)
	go func() { done <- mgr.Upload(context.Background(), state.CategoryHosts, local) }()
	<-backend.entered

	cs := mgr.Snapshot().Categories[state.CategoryHosts]
	if !cs.Uploading || cs.PendingUpload != "hosts.yaml" {
		t.Fatalf("expected in-flight pending upload, got %+v", cs)
	}
	if err := mgr.Upload(context.Background(), state.CategoryHosts, local); !errors.Is(err, controller.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	backend.mu.Lock()
	backend.block = nil
	backend.entered = nil
	backend.mu.Unlock()
	// Another category is independent.
	if err := mgr.Upload(context.Background(), state.CategoryGroups, writeLocal(t, "groups.yaml")); err != nil {
		t.Fatalf("groups upload: %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if backend.uploadCalls != 2 {
		t.Fatalf("expected two upload calls, got %d", backend.uploadCalls)
	}
}

func TestSelectDuringUploadWins(t *testing.T) {
	tests := []struct {
		name   string
		upload api.UploadResponse
		err    error
	}{
		{name: "failed upload", err: &api.CallFailure{Kind: api.KindRejection, Status: 500, Message: "disk full"}},
		{name: "successful upload", upload: api.UploadResponse{Success: true, Path: "config/hosts.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := make(chan struct{})
			backend := &fakeBackend{
				upload:    tt.upload,
				uploadErr: tt.err,
				block:     block,
				entered:   make(chan struct{}, 1),
			}
			mgr := New(state.NewStore(), backend, Options{})
			mgr.Select(state.CategoryHosts, "config/old.yaml")
			local := writeLocal(t, "hosts.yaml")

			done := make(chan error, 1)
			go func() { done <- mgr.Upload(context.Background(), state.CategoryHosts, local) }()
			<-backend.entered

			mgr.Select(state.CategoryHosts, "config/chosen.yaml")
			close(block)
			<-done

			cs := mgr.Snapshot().Categories[state.CategoryHosts]
			if cs.Selected != "config/chosen.yaml" || cs.PendingUpload != "" || cs.Uploading {
				t.Fatalf("expected the mid-upload selection kept, got %+v", cs)
			}
		})
	}
}

func TestValidateStoresOutcome(t *testing.T) {
	backend := &fakeBackend{validate: api.ValidationResponse{Success: true, Message: "3 hosts loaded"}}
	store := state.NewStore()
	mgr := New(store, backend, Options{})

	if mgr.Snapshot().Validation != nil {
		t.Fatal("expected no validation result before first call")
	}
	if err := mgr.Validate(context.Background()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := &state.ValidationResult{Outcome: state.ValidationSuccess, Message: "3 hosts loaded"}
	if diff := cmp.Diff(want, mgr.Snapshot().Validation); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}

	backend.validate = api.ValidationResponse{Success: false, Error: "groups.yaml: missing platform"}
	if err := mgr.Validate(context.Background()); err == nil {
		t.Fatal("expected validation failure")
	}
	want = &state.ValidationResult{Outcome: state.ValidationError, Message: "groups.yaml: missing platform"}
	if diff := cmp.Diff(want, mgr.Snapshot().Validation); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
	if n := store.Snapshot().Notice; n.Text != "Configuration validation failed" {
		t.Fatalf("unexpected notice %+v", n)
	}
}
