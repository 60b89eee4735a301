// Package configfiles manages the inventory configuration files the backend
// inspects against: discovery, per-category selection, upload and validation.
package configfiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/inflight"
	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// Directory is the backend directory holding configuration files.
const Directory = "config"

const validateKey = "validate"

// Backend is the subset of the gateway the manager calls.
type Backend interface {
	ListFiles(ctx context.Context, directory string) ([]api.FileEntry, error)
	UploadConfig(ctx context.Context, category state.Category, file api.File) (api.UploadResponse, error)
	ValidateConfigs(ctx context.Context) (api.ValidationResponse, error)
}

// Screener vets a local file before it is uploaded.
type Screener interface {
	Check(path string) error
}

// Options configure a Manager.
type Options struct {
	Screener Screener
	Logger   *zap.Logger
}

// Manager owns the configuration category state. It is safe for concurrent use.
type Manager struct {
	backend Backend
	store   *state.Store
	log     *zap.Logger
	guard   *inflight.Guard

	mu         sync.Mutex
	screener   Screener
	categories map[state.Category]state.CategoryState
	validation *state.ValidationResult
	refreshing int
	validating bool
}

var _ controller.ConfigManager = (*Manager)(nil)

// New returns a manager with every category empty.
func New(store *state.Store, backend Backend, opts Options) *Manager {
	categories := make(map[state.Category]state.CategoryState, len(state.Categories))
	for _, c := range state.Categories {
		categories[c] = state.CategoryState{}
	}
	return &Manager{
		backend:    backend,
		store:      store,
		log:        logging.OrNop(opts.Logger).Named("configfiles"),
		guard:      inflight.New(),
		screener:   opts.Screener,
		categories: categories,
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() state.ConfigSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := state.ConfigSnapshot{
		Categories: make(map[state.Category]state.CategoryState, len(m.categories)),
		Refreshing: m.refreshing > 0,
		Validating: m.validating,
	}
	for c, cs := range m.categories {
		cs.Files = append([]state.ExistingFile(nil), cs.Files...)
		snap.Categories[c] = cs
	}
	if m.validation != nil {
		v := *m.validation
		snap.Validation = &v
	}
	return snap
}

// Refresh re-fetches the backend's configuration files and partitions them by
// category. A category with neither a selection nor a pending upload picks
// the file named exactly "{category}.yaml". On failure the previous lists are
// kept.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.refreshing++
	m.mu.Unlock()
	m.store.Changed()

	files, err := m.backend.ListFiles(ctx, Directory)

	m.mu.Lock()
	m.refreshing--
	if err == nil {
		m.applyListingLocked(files)
	}
	m.mu.Unlock()

	if err != nil {
		m.store.Notify(state.NoticeError, "Failed to fetch existing configuration files")
		m.store.Changed()
		return fmt.Errorf("list config files: %w", err)
	}
	m.store.Changed()
	return nil
}

func (m *Manager) applyListingLocked(files []api.FileEntry) {
	for _, c := range state.Categories {
		needle := string(c)
		matched := make([]state.ExistingFile, 0)
		for _, f := range files {
			if strings.Contains(strings.ToLower(f.Name), needle) {
				matched = append(matched, state.ExistingFile{Name: f.Name, Path: f.Path})
			}
		}
		cs := m.categories[c]
		cs.Files = matched
		if cs.Selected == "" && cs.PendingUpload == "" {
			exact := needle + ".yaml"
			for _, f := range matched {
				if f.Name == exact {
					cs.Selected = f.Path
					break
				}
			}
		}
		m.categories[c] = cs
	}
}

// Select picks an existing file for category. An empty path clears the
// selection. Any pending upload for the category is discarded.
func (m *Manager) Select(category state.Category, path string) {
	m.mu.Lock()
	cs, ok := m.categories[category]
	if !ok {
		m.mu.Unlock()
		return
	}
	cs.Selected = path
	cs.PendingUpload = ""
	m.categories[category] = cs
	m.mu.Unlock()
	m.store.Changed()
}

// Ready reports whether every category has an uploaded or selected file.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range state.Categories {
		if !m.categories[c].Ready() {
			return false
		}
	}
	return true
}

// Upload sends a local YAML file for category. While the call is outstanding
// the file is the category's pending upload. On success the listing is
// refreshed and the stored path selected; on failure the previous selection
// is restored. A Select made while the call is outstanding replaces the
// pending upload and is kept either way.
func (m *Manager) Upload(ctx context.Context, category state.Category, localPath string) error {
	if _, ok := m.categoryState(category); !ok {
		return controller.Invalid(fmt.Sprintf("unknown configuration category %q", category))
	}
	name := filepath.Base(localPath)
	if !isYAML(name) {
		m.store.Notify(state.NoticeError, "Please select a YAML file (.yaml or .yml)")
		return controller.Invalid("configuration files must be .yaml or .yml")
	}

	release, ok := m.guard.Acquire(string(category))
	if !ok {
		return controller.ErrBusy
	}
	defer release()

	if err := m.screen(localPath); err != nil {
		msg := fmt.Sprintf("%s upload failed: %v", name, err)
		m.store.Notify(state.NoticeError, msg)
		return controller.Invalid(msg)
	}

	f, err := os.Open(localPath)
	if err != nil {
		m.store.Notify(state.NoticeError, fmt.Sprintf("%s upload failed: %v", name, err))
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	m.mu.Lock()
	cs := m.categories[category]
	previous := cs.Selected
	cs.Selected = ""
	cs.PendingUpload = name
	cs.Uploading = true
	m.categories[category] = cs
	m.mu.Unlock()
	m.store.Changed()

	resp, err := m.backend.UploadConfig(ctx, category, api.File{Name: name, Body: f})
	if err == nil && !resp.Success {
		err = api.Rejection("upload config", resp.Error, "Upload failed")
	}
	if err != nil {
		m.mu.Lock()
		cs := m.categories[category]
		if cs.PendingUpload == name {
			cs.PendingUpload = ""
			cs.Selected = previous
		}
		cs.Uploading = false
		m.categories[category] = cs
		m.mu.Unlock()
		m.log.Debug("config upload failed", zap.String("category", string(category)), zap.String("file", name), zap.Error(err))
		m.store.Notify(state.NoticeError, fmt.Sprintf("%s upload failed: %s", name, api.Message(err)))
		m.store.Changed()
		return err
	}

	m.mu.Lock()
	cs = m.categories[category]
	cs.Uploading = false
	m.categories[category] = cs
	m.mu.Unlock()

	m.store.Notify(state.NoticeSuccess, name+" uploaded successfully")
	_ = m.Refresh(ctx)
	if resp.Path != "" {
		m.mu.Lock()
		cs = m.categories[category]
		if cs.PendingUpload == name {
			cs.PendingUpload = ""
			cs.Selected = resp.Path
			m.categories[category] = cs
		}
		m.mu.Unlock()
	}
	m.store.Changed()
	return nil
}

// Validate asks the backend to validate the current configuration and stores
// the outcome. Readiness is the caller's concern.
func (m *Manager) Validate(ctx context.Context) error {
	release, ok := m.guard.Acquire(validateKey)
	if !ok {
		return controller.ErrBusy
	}
	defer release()

	m.mu.Lock()
	m.validating = true
	m.mu.Unlock()
	m.store.Changed()

	resp, err := m.backend.ValidateConfigs(ctx)
	if err == nil && !resp.Success {
		err = api.Rejection("validate configs", resp.Error, "Configuration validation failed")
	}

	result := state.ValidationResult{Outcome: state.ValidationSuccess, Message: resp.Message}
	if err != nil {
		result = state.ValidationResult{Outcome: state.ValidationError, Message: api.Message(err)}
	}

	m.mu.Lock()
	m.validating = false
	m.validation = &result
	m.mu.Unlock()

	if err != nil {
		m.store.Notify(state.NoticeError, "Configuration validation failed")
	} else {
		m.store.Notify(state.NoticeSuccess, "Configuration validated successfully")
	}
	m.store.Changed()
	return err
}

func (m *Manager) categoryState(c state.Category) (state.CategoryState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.categories[c]
	return cs, ok
}

func (m *Manager) screen(path string) error {
	if m.screener == nil {
		return nil
	}
	return m.screener.Check(path)
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
