package settings

import (
	"strings"
	"sync"

	"github.com/adamkadaban/netinspector-tui/internal/config"
	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/yara"
)

// Manager persists user-facing settings to disk.
type Manager struct {
	path string
	mu   sync.Mutex
	cfg  config.Config
}

var _ controller.SettingsManager = (*Manager)(nil)

// NewManager returns a manager initialized with the current configuration snapshot.
func NewManager(path string, cfg config.Config) *Manager {
	return &Manager{path: path, cfg: cfg}
}

// SetTheme stores the normalized theme name and writes it to disk.
func (m *Manager) SetTheme(name string) (string, error) {
	normalized := config.NormalizeTheme(name)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.Theme = normalized
	if err := config.Save(m.path, m.cfg); err != nil {
		return "", err
	}
	return normalized, nil
}

// SetScreening toggles upload screening. Enabling requires a rule directory.
func (m *Manager) SetScreening(enabled bool, ruleDir string) (bool, error) {
	ruleDir = strings.TrimSpace(ruleDir)
	m.mu.Lock()
	defer m.mu.Unlock()

	if ruleDir == "" {
		ruleDir = m.cfg.Screening.RuleDir
	}
	if enabled && ruleDir == "" {
		return m.cfg.Screening.Enabled, controller.Invalid("screening needs a rule directory")
	}
	m.cfg.Screening = config.Screening{Enabled: enabled, RuleDir: ruleDir}
	if err := config.Save(m.path, m.cfg); err != nil {
		return false, err
	}
	return enabled, nil
}

// Replace swaps the managed config after an external edit of the file.
func (m *Manager) Replace(cfg config.Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// Check screens path with the current screening settings, so a toggle takes
// effect on the next upload.
func (m *Manager) Check(path string) error {
	m.mu.Lock()
	s := yara.Screener{Enabled: m.cfg.Screening.Enabled, RulesDir: m.cfg.Screening.RuleDir}
	m.mu.Unlock()
	return s.Check(path)
}

// Config returns a copy of the managed config.
func (m *Manager) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}
