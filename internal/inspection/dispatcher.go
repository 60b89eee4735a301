// Package inspection selects devices and templates, dispatches inspection
// runs to the backend and turns per-host outcomes into a timestamped log.
package inspection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// Backend is the subset of the gateway the dispatcher calls.
type Backend interface {
	ListHosts(ctx context.Context) ([]api.Host, error)
	StartInspection(ctx context.Context, req api.InspectionRequest) (api.InspectionResponse, error)
}

// Templates supplies the template listings the selectors draw from.
type Templates interface {
	Refresh(ctx context.Context) error
}

// Selection is everything a run needs. Hosts keep selection order.
type Selection struct {
	Hosts           []string
	CommandTemplate string
	PromptTemplate  string
}

// Options configure a Dispatcher.
type Options struct {
	Templates Templates
	Logger    *zap.Logger
}

// Dispatcher is safe for concurrent use. At most one run is in flight.
type Dispatcher struct {
	backend   Backend
	templates Templates
	store     *state.Store
	log       *zap.Logger
	logs      *state.Log

	mu        sync.Mutex
	running   bool
	runID     string
	devices   []state.Device
	selection Selection
}

var _ controller.InspectionManager = (*Dispatcher)(nil)

// New returns an idle dispatcher with an empty log.
func New(store *state.Store, backend Backend, opts Options) *Dispatcher {
	return &Dispatcher{
		backend:   backend,
		templates: opts.Templates,
		store:     store,
		log:       logging.OrNop(opts.Logger).Named("inspection"),
		logs:      state.NewLog(),
	}
}

// Snapshot returns a copy of the dispatcher state including the full log.
func (d *Dispatcher) Snapshot() state.InspectionSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	devices := make([]state.Device, len(d.devices))
	for i, dev := range d.devices {
		dev.Groups = slices.Clone(dev.Groups)
		devices[i] = dev
	}
	return state.InspectionSnapshot{
		Devices:         devices,
		SelectedHosts:   slices.Clone(d.selection.Hosts),
		CommandTemplate: d.selection.CommandTemplate,
		PromptTemplate:  d.selection.PromptTemplate,
		Running:         d.running,
		RunID:           d.runID,
		Logs:            d.logs.Entries(),
	}
}

// Reload fetches devices and templates concurrently. Each listing fails
// independently and keeps its previous data.
func (d *Dispatcher) Reload(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.LoadDevices(ctx) })
	g.Go(func() error { return d.LoadTemplates(ctx) })
	return g.Wait()
}

// LoadDevices replaces the device list with the backend inventory.
func (d *Dispatcher) LoadDevices(ctx context.Context) error {
	hosts, err := d.backend.ListHosts(ctx)
	if err != nil {
		d.store.Notify(state.NoticeError, "Failed to load hosts list")
		return fmt.Errorf("list hosts: %w", err)
	}
	devices := make([]state.Device, 0, len(hosts))
	for _, h := range hosts {
		devices = append(devices, state.Device{
			Name:     h.Name,
			IP:       h.IP,
			Platform: h.Platform,
			Groups:   slices.Clone(h.Groups),
		})
	}
	d.mu.Lock()
	d.devices = devices
	d.mu.Unlock()
	d.store.Changed()
	return nil
}

// LoadTemplates refreshes the command and prompt template listings.
func (d *Dispatcher) LoadTemplates(ctx context.Context) error {
	if d.templates == nil {
		return nil
	}
	if err := d.templates.Refresh(ctx); err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	return nil
}

// ToggleHost adds name to the end of the selection or removes it.
func (d *Dispatcher) ToggleHost(name string) {
	d.mu.Lock()
	if i := slices.Index(d.selection.Hosts, name); i >= 0 {
		d.selection.Hosts = slices.Delete(d.selection.Hosts, i, i+1)
	} else {
		d.selection.Hosts = append(d.selection.Hosts, name)
	}
	d.mu.Unlock()
	d.store.Changed()
}

// SetHosts replaces the selection, dropping blanks and duplicates.
func (d *Dispatcher) SetHosts(names []string) {
	hosts := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(hosts, n) {
			continue
		}
		hosts = append(hosts, n)
	}
	d.mu.Lock()
	d.selection.Hosts = hosts
	d.mu.Unlock()
	d.store.Changed()
}

func (d *Dispatcher) SetCommandTemplate(path string) {
	d.mu.Lock()
	d.selection.CommandTemplate = path
	d.mu.Unlock()
	d.store.Changed()
}

func (d *Dispatcher) SetPromptTemplate(path string) {
	d.mu.Lock()
	d.selection.PromptTemplate = path
	d.mu.Unlock()
	d.store.Changed()
}

// Start runs an inspection with the current selection.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	sel := Selection{
		Hosts:           slices.Clone(d.selection.Hosts),
		CommandTemplate: d.selection.CommandTemplate,
		PromptTemplate:  d.selection.PromptTemplate,
	}
	d.mu.Unlock()
	return d.run(ctx, sel)
}

// StartWith replaces the selection with sel and runs an inspection.
func (d *Dispatcher) StartWith(ctx context.Context, sel Selection) error {
	d.SetHosts(sel.Hosts)
	d.SetCommandTemplate(sel.CommandTemplate)
	d.SetPromptTemplate(sel.PromptTemplate)
	return d.Start(ctx)
}

func (d *Dispatcher) run(ctx context.Context, sel Selection) error {
	if len(sel.Hosts) == 0 {
		d.store.Notify(state.NoticeError, "Please select at least one host")
		return controller.Invalid("select at least one host")
	}
	if sel.CommandTemplate == "" || sel.PromptTemplate == "" {
		d.store.Notify(state.NoticeError, "Please select command and prompt files")
		return controller.Invalid("select command and prompt files")
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return controller.ErrBusy
	}
	runID := uuid.NewString()
	d.running = true
	d.runID = runID
	d.mu.Unlock()
	d.store.Changed()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
		d.store.Changed()
	}()

	runLog := d.log.With(zap.String("run_id", runID))
	appendLine := func(sev state.Severity, msg string) {
		d.logs.Append(sev, msg)
		runLog.Debug(msg, zap.String("severity", string(sev)))
		d.store.Changed()
	}

	appendLine(state.SeverityInfo, "Starting inspection process...")
	appendLine(state.SeverityInfo, "Selected hosts: "+strings.Join(sel.Hosts, ", "))
	appendLine(state.SeverityInfo, "Command file: "+sel.CommandTemplate)
	appendLine(state.SeverityInfo, "Prompt file: "+sel.PromptTemplate)

	resp, err := d.backend.StartInspection(ctx, api.InspectionRequest{
		Hosts:       sel.Hosts,
		CommandFile: sel.CommandTemplate,
		PromptFile:  sel.PromptTemplate,
	})
	if err == nil && resp.Status != api.StatusSuccess {
		err = api.Rejection("start inspection", resp.Message, "inspection failed")
	}
	if err != nil {
		appendLine(state.SeverityError, "Error: "+api.Message(err))
		d.store.Notify(state.NoticeError, "Inspection failed")
		return err
	}

	appendLine(state.SeveritySuccess, "Inspection started successfully")
	for _, result := range resp.Results {
		if result.Status != api.StatusSuccess {
			detail := result.Error
			if detail == "" {
				detail = "unknown error"
			}
			appendLine(state.SeverityError, fmt.Sprintf("Host %s: Inspection failed - %s", result.Host, detail))
			continue
		}
		appendLine(state.SeveritySuccess, fmt.Sprintf("Host %s: Inspection completed", result.Host))
		if result.RawConfig != "" {
			appendLine(state.SeverityInfo, "Raw config saved to: "+result.RawConfig)
		}
		if result.Report != "" {
			appendLine(state.SeverityInfo, "Report generated at: "+result.Report)
		}
	}
	return nil
}
