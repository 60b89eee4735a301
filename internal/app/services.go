package app

import (
	"go.uber.org/zap"

	"github.com/adamkadaban/netinspector-tui/internal/api"
	"github.com/adamkadaban/netinspector-tui/internal/assistant"
	"github.com/adamkadaban/netinspector-tui/internal/config"
	"github.com/adamkadaban/netinspector-tui/internal/configfiles"
	"github.com/adamkadaban/netinspector-tui/internal/inspection"
	"github.com/adamkadaban/netinspector-tui/internal/settings"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/templates"
)

// Services holds the gateway and every workflow manager. The TUI and the
// command-line subcommands share it.
type Services struct {
	Store      *state.Store
	Client     *api.Client
	Settings   *settings.Manager
	Remote     *settings.Remote
	Config     *configfiles.Manager
	Templates  *templates.Manager
	Inspection *inspection.Dispatcher
	Gate       *assistant.Gate
}

// NewServices wires the managers around one gateway client. Upload
// screening reads the settings manager on every upload so toggles apply
// without a restart.
func NewServices(cfg config.Config, configPath string, logger *zap.Logger) *Services {
	store := state.NewStore()
	store.SetSettings(state.Settings{
		Theme:            cfg.Theme,
		ScreeningEnabled: cfg.Screening.Enabled,
		ScreeningRuleDir: cfg.Screening.RuleDir,
	})

	client := api.New(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger.Named("api"),
	})
	settingsMgr := settings.NewManager(configPath, cfg)
	tmpl := templates.New(store, client, templates.Options{Screener: settingsMgr, Logger: logger})

	return &Services{
		Store:      store,
		Client:     client,
		Settings:   settingsMgr,
		Remote:     settings.NewRemote(store, client),
		Config:     configfiles.New(store, client, configfiles.Options{Screener: settingsMgr, Logger: logger}),
		Templates:  tmpl,
		Inspection: inspection.New(store, client, inspection.Options{Templates: tmpl, Logger: logger}),
		Gate:       assistant.New(store, client, assistant.Options{Logger: logger}),
	}
}

// ApplyConfig pushes an externally edited config into the running services.
func (s *Services) ApplyConfig(cfg config.Config) {
	s.Settings.Replace(cfg)
	s.Store.SetSettings(state.Settings{
		Theme:            cfg.Theme,
		ScreeningEnabled: cfg.Screening.Enabled,
		ScreeningRuleDir: cfg.Screening.RuleDir,
	})
}
