package main

import (
	"github.com/spf13/cobra"

	"github.com/adamkadaban/netinspector-tui/internal/app"
)

// cli carries the global flags and the lazily built services shared by the
// subcommands.
type cli struct {
	opts     app.Options
	services *app.Services
	closeLog func()
}

// newRootCmd builds the command tree. The returned func closes the log file
// opened by a subcommand and must run after Execute whatever its outcome.
func newRootCmd() (*cobra.Command, func()) {
	c := &cli{}
	root := &cobra.Command{
		Use:   "netinspector-tui",
		Short: "Terminal console for the network inspection backend",
		Long: `netinspector-tui drives a network inspection backend from the terminal.

Run without arguments to start the interactive console. The subcommands
perform single operations for scripting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), c.opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "", "Path to the config file (defaults to XDG config dir)")
	flags.StringVar(&c.opts.APIBaseURL, "api", "", "Backend base URL (overrides config and environment)")
	flags.StringVar(&c.opts.LogFile, "log-file", "", "Log file path (defaults to the user cache dir)")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.Flags().StringVar(&c.opts.Theme, "theme", "", "Override theme (light, dark, auto)")

	root.AddCommand(
		c.hostsCmd(),
		c.filesCmd(),
		c.uploadConfigCmd(),
		c.validateCmd(),
		c.uploadTemplateCmd(),
		c.inspectCmd(),
		c.chatCmd(),
		c.settingsCmd(),
	)
	return root, c.close
}

func (c *cli) close() {
	if c.closeLog != nil {
		c.closeLog()
		c.closeLog = nil
	}
}

// load builds the services on first use.
func (c *cli) load() (*app.Services, error) {
	if c.services != nil {
		return c.services, nil
	}
	cfg, configPath, err := app.Load(c.opts)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := app.Logger(cfg)
	if err != nil {
		return nil, err
	}
	c.closeLog = closeLog
	c.services = app.NewServices(cfg, configPath, logger)
	return c.services, nil
}
