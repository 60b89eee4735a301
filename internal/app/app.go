package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adamkadaban/netinspector-tui/internal/config"
	"github.com/adamkadaban/netinspector-tui/internal/keymap"
	"github.com/adamkadaban/netinspector-tui/internal/logging"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	root "github.com/adamkadaban/netinspector-tui/internal/ui/root"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
)

// Options control how the application is executed.
type Options struct {
	ConfigPath string
	Theme      string
	APIBaseURL string
	LogFile    string
	LogLevel   string
}

// Load resolves the config path and reads the config with command-line
// overrides applied.
func Load(opts Options) (config.Config, string, error) {
	configPath, err := config.ResolvePath(opts.ConfigPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("resolve config: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(opts.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, configPath, nil
}

// Logger opens the file logger configured by cfg.
func Logger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, closeLog, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return logger, closeLog, nil
}

// Run loads configuration, wires the services, and starts the Bubble Tea
// program alongside the config file watcher.
func Run(ctx context.Context, opts Options) error {
	cfg, configPath, err := Load(opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := Logger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting", zap.String("api", cfg.APIBaseURL), zap.String("config", configPath))

	services := NewServices(cfg, configPath, logger)
	palette := theme.New(theme.Options{Override: opts.Theme, Preferred: cfg.Theme})
	km := keymap.DefaultGlobal()

	runnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootModel := root.New(runnerCtx, services.Store, root.Options{
		Theme:      palette,
		KeyMap:     &km,
		Config:     services.Config,
		Inspection: services.Inspection,
		Templates:  services.Templates,
		Gate:       services.Gate,
		Settings:   services.Settings,
		Remote:     services.Remote,
	})

	prog := tea.NewProgram(rootModel, tea.WithAltScreen(), tea.WithContext(runnerCtx))

	group, groupCtx := errgroup.WithContext(runnerCtx)
	group.Go(func() error {
		err := config.Watch(groupCtx, configPath, func(next config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				return
			}
			services.ApplyConfig(next)
			if opts.Theme == "" {
				prog.Send(view.ThemeMsg{Theme: theme.New(theme.Options{Preferred: next.Theme})})
			}
		})
		if err != nil {
			logger.Warn("config watch stopped", zap.Error(err))
		}
		return nil
	})
	group.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		return err
	})

	if err := group.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("stopped")
	return nil
}
