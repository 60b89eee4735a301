// Package templates lists and uploads the command and prompt templates an
// inspection run is built from.
package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/inflight"
	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// Backend is the subset of the gateway the manager calls.
type Backend interface {
	ListFiles(ctx context.Context, directory string) ([]api.FileEntry, error)
	UploadTemplate(ctx context.Context, kind state.TemplateKind, file api.File) (api.UploadResponse, error)
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

type kindInfo struct {
	dir   string
	ext   string
	label string
}

var kinds = map[state.TemplateKind]kindInfo{
	state.TemplateCommand: {dir: "templates/commands", ext: ".json", label: "Command templates"},
	state.TemplatePrompt:  {dir: "templates/prompts", ext: ".txt", label: "Prompt templates"},
}

// Directory returns the backend directory that holds templates of kind.
func Directory(kind state.TemplateKind) string {
	return kinds[kind].dir
}

// Extension returns the file extension required for kind.
func Extension(kind state.TemplateKind) string {
	return kinds[kind].ext
}

// Manager owns both template listings. It is safe for concurrent use.
type Manager struct {
	backend Backend
	store   *state.Store
	log     *zap.Logger
	guard   *inflight.Guard

	mu        sync.Mutex
	screener  Screener
	lists     map[state.TemplateKind][]state.TemplateFile
	uploading map[state.TemplateKind]bool
}

var _ controller.TemplateManager = (*Manager)(nil)

// New returns a manager with empty listings.
func New(store *state.Store, backend Backend, opts Options) *Manager {
	return &Manager{
		backend:   backend,
		store:     store,
		log:       logging.OrNop(opts.Logger).Named("templates"),
		guard:     inflight.New(),
		screener:  opts.Screener,
		lists:     make(map[state.TemplateKind][]state.TemplateFile),
		uploading: make(map[state.TemplateKind]bool),
	}
}

func (m *Manager) Snapshot() state.TemplateSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := state.TemplateSnapshot{
		Commands:  append([]state.TemplateFile(nil), m.lists[state.TemplateCommand]...),
		Prompts:   append([]state.TemplateFile(nil), m.lists[state.TemplatePrompt]...),
		Uploading: make(map[state.TemplateKind]bool, len(m.uploading)),
	}
	for k, v := range m.uploading {
		snap.Uploading[k] = v
	}
	return snap
}

// List replaces the listing for kind. On failure the previous listing is kept.
func (m *Manager) List(ctx context.Context, kind state.TemplateKind) error {
	info, ok := kinds[kind]
	if !ok {
		return controller.Invalid(fmt.Sprintf("unknown template kind %q", kind))
	}
	entries, err := m.backend.ListFiles(ctx, info.dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", info.dir, err)
	}
	files := make([]state.TemplateFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, state.TemplateFile{Name: e.Name, Path: e.Path})
	}
	m.mu.Lock()
	m.lists[kind] = files
	m.mu.Unlock()
	m.store.Changed()
	return nil
}

// Refresh lists both kinds concurrently.
func (m *Manager) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return m.List(ctx, state.TemplateCommand) })
	g.Go(func() error { return m.List(ctx, state.TemplatePrompt) })
	if err := g.Wait(); err != nil {
		m.store.Notify(state.NoticeError, "Failed to load template files")
		return err
	}
	return nil
}

// Upload sends a local template file. The extension must match kind or the
// file is rejected without a network call. Uploads of different kinds are
// independent.
func (m *Manager) Upload(ctx context.Context, kind state.TemplateKind, localPath string) error {
	info, ok := kinds[kind]
	if !ok {
		return controller.Invalid(fmt.Sprintf("unknown template kind %q", kind))
	}
	name := filepath.Base(localPath)
	if !strings.EqualFold(filepath.Ext(name), info.ext) {
		msg := fmt.Sprintf("%s must be %s files", info.label, info.ext)
		m.store.Notify(state.NoticeError, msg)
		return controller.Invalid(msg)
	}

	release, ok := m.guard.Acquire(string(kind))
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

	m.setUploading(kind, true)
	resp, err := m.backend.UploadTemplate(ctx, kind, api.File{Name: name, Body: f})
	m.setUploading(kind, false)
	if err != nil {
		m.log.Debug("template upload failed", zap.String("kind", string(kind)), zap.String("file", name), zap.Error(err))
		m.store.Notify(state.NoticeError, fmt.Sprintf("%s upload failed: %s", name, api.Message(err)))
		return err
	}

	notice := resp.Message
	if notice == "" {
		notice = name + " uploaded successfully"
	}
	m.store.Notify(state.NoticeSuccess, notice)
	if err := m.List(ctx, kind); err != nil {
		m.store.Notify(state.NoticeError, "Failed to load template files")
	}
	return nil
}

func (m *Manager) setUploading(kind state.TemplateKind, v bool) {
	m.mu.Lock()
	m.uploading[kind] = v
	m.mu.Unlock()
	m.store.Changed()
}

func (m *Manager) screen(path string) error {
	if m.screener == nil {
		return nil
	}
	return m.screener.Check(path)
}
