// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cruxland/crux/internal/config"
)

// newConfigCommand creates the `crux config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crux configuration",
		Long: `Manage crux configuration.

Configuration is stored in:
  - Linux: ~/.config/crux/config.cue
  - macOS: ~/Library/Application Support/crux/config.cue
  - Windows: %APPDATA%\crux\config.cue

Every key can be overridden with a CRUX_ environment variable, for example
CRUX_BASE_URL or CRUX_HTTP_TIMEOUT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.handleError(cmd, showConfig(cmd.Context(), app))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.handleError(cmd, initConfig(app))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return app.handleError(cmd, err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

// configFilePath returns the config file crux reads: the --config flag,
// else config.cue in the config directory.
func (a *App) configFilePath() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	if a.configDir != "" {
		return filepath.Join(a.configDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
	}
	return config.ConfigFilePath()
}

func showConfig(ctx context.Context, app *App) error {
	cfg, path, err := config.Load(ctx, config.LoadOptions{
		ConfigFilePath: app.flags.configPath,
		ConfigDirPath:  app.configDir,
	})
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("base_url"), valueStyle.Render(cfg.BaseURL))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("auth_dir"), valueStyle.Render(cfg.AuthDir))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("http"))
	fmt.Fprintf(out, "  timeout: %s\n", valueStyle.Render(cfg.HTTP.Timeout.String()))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(out, "  accessible: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Accessible)))
	fmt.Fprintf(out, "  theme: %s\n", valueStyle.Render(cfg.UI.Theme.String()))

	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "Configuration already exists at %s\n", path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
