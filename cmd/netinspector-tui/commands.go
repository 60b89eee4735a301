package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/adamkadaban/netinspector-tui/internal/assistant"
	"github.com/adamkadaban/netinspector-tui/internal/inspection"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

func (c *cli) hostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List the device inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			hosts, err := s.Client.ListHosts(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(hosts))
			for i, h := range hosts {
				rows[i] = []string{h.Name, h.IP, h.Platform, strings.Join(h.Groups, ", ")}
			}
			printTable(cmd.OutOrStdout(), []string{"NAME", "IP", "PLATFORM", "GROUPS"}, rows)
			return nil
		},
	}
}

func (c *cli) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <directory>",
		Short: "List files in a backend directory",
		Long: `List files in a backend directory, for example:

  netinspector-tui files config
  netinspector-tui files templates/commands`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			files, err := s.Client.ListFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(files))
			for i, f := range files {
				rows[i] = []string{f.Name, f.Path}
			}
			printTable(cmd.OutOrStdout(), []string{"NAME", "PATH"}, rows)
			return nil
		},
	}
}

func (c *cli) uploadConfigCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "upload-config <file>",
		Short: "Upload a hosts, groups or defaults YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			if err := s.Config.Upload(cmd.Context(), state.Category(strings.ToLower(category)), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(args[0])+" uploaded successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Configuration category (hosts, groups, defaults)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the uploaded configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			err = s.Config.Validate(cmd.Context())
			if v := s.Config.Snapshot().Validation; v != nil && v.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), v.Message)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration validated successfully")
			return nil
		},
	}
}

func (c *cli) uploadTemplateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "upload-template <file>",
		Short: "Upload a command (.json) or prompt (.txt) template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			if err := s.Templates.Upload(cmd.Context(), state.TemplateKind(strings.ToLower(kind)), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(args[0])+" uploaded successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Template kind (command, prompt)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	var sel inspection.Selection
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run an inspection and print its log",
		Long: `Run an inspection on one or more hosts and print the run log.

  netinspector-tui inspect --host r1 --host r2 \
    --commands templates/commands/health.json --prompt templates/prompts/summary.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			runErr := s.Inspection.StartWith(cmd.Context(), sel)
			for _, entry := range s.Inspection.Snapshot().Logs {
				fmt.Fprintln(cmd.OutOrStdout(), util.FormatLogEntry(entry))
			}
			return runErr
		},
	}
	cmd.Flags().StringArrayVar(&sel.Hosts, "host", nil, "Host to inspect (repeatable)")
	cmd.Flags().StringVar(&sel.CommandTemplate, "commands", "", "Command template path")
	cmd.Flags().StringVar(&sel.PromptTemplate, "prompt", "", "Prompt template path")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant; suggested commands run only after confirmation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reply, err := s.Gate.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil || reply == nil {
				return err
			}
			fmt.Fprintln(out, reply.Message())

			suggested, ok := reply.(assistant.ReplyWithCommand)
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "\nSuggested command: %s\nExecute? [y/N] ", suggested.Command)
			if !confirmed(cmd.InOrStdin()) {
				fmt.Fprintln(out, "Command cancelled")
				return s.Gate.Cancel()
			}
			if err := s.Gate.Confirm(cmd.Context()); err != nil {
				return err
			}
			for _, entry := range s.Gate.Snapshot().Terminal {
				fmt.Fprintln(out, entry.Message)
			}
			return nil
		},
	}
}

func (c *cli) settingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or edit the backend settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			if err := s.Remote.Load(cmd.Context()); err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, f := range s.Remote.Fields() {
				rows = append(rows, []string{f.Path, f.Value, string(f.Kind)})
			}
			printTable(cmd.OutOrStdout(), []string{"SETTING", "VALUE", "TYPE"}, rows)
			return nil
		},
	}
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <path=value>...",
		Short: "Change backend settings and save them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			if err := s.Remote.Load(cmd.Context()); err != nil {
				return err
			}
			for _, arg := range args {
				path, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected path=value, got %q", arg)
				}
				if err := s.Remote.Set(strings.TrimSpace(path), value); err != nil {
					return err
				}
			}
			if err := s.Remote.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved successfully")
			return nil
		},
	})
	return settingsCmd
}

func confirmed(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No entries")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
