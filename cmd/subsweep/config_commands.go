package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"subsweep/internal/config"
	"subsweep/internal/logging"
	"subsweep/internal/preflight"
	"subsweep/internal/services/jellyfin"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set jellyfin.api_key (or export JELLYFIN_API_KEY) before running subsweep.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Subtitle root: %s\n", cfg.Paths.SubtitleDir)
			fmt.Fprintf(out, "Languages: %s\n", cfg.LanguageFilter())
			fmt.Fprintf(out, "Schedule: %s\n", cfg.Schedule.CronExpr)

			var client *jellyfin.Client
			if online {
				client, err = jellyfin.NewConfiguredClient(cfg, logging.NewNop())
				if err != nil {
					return err
				}
			}
			var server preflight.ServerChecker
			if client != nil {
				server = client
			}
			results := preflight.RunAll(cmd.Context(), cfg, server)
			fmt.Fprintln(out, renderPreflight(results))
			if preflight.AnyFailed(results) {
				return fmt.Errorf("configuration checks failed")
			}

			if client != nil {
				if err := printLibraryRoots(cmd, cfg, client); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also contact Jellyfin and resolve extraction.library_names")
	return cmd
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "FAIL"
		if r.Passed {
			status = "ok"
		} else if r.Optional {
			status = "warn"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}

func printLibraryRoots(cmd *cobra.Command, cfg *config.Config, client *jellyfin.Client) error {
	out := cmd.OutOrStdout()
	if len(cfg.Extraction.LibraryNames) == 0 {
		fmt.Fprintln(out, "Libraries: all (extraction.library_names is empty)")
		return nil
	}
	libs, err := client.Libraries(cmd.Context())
	if err != nil {
		return fmt.Errorf("list libraries: %w", err)
	}
	rows := make([][]string, 0, len(cfg.Extraction.LibraryNames))
	for _, name := range cfg.Extraction.LibraryNames {
		root := "not found"
		for _, lib := range libs {
			if strings.EqualFold(lib.Name, strings.TrimSpace(name)) {
				root = string(lib.Root)
				break
			}
		}
		rows = append(rows, []string{name, root})
	}
	fmt.Fprintln(out, renderTable([]string{"Library", "Root"}, rows, nil))
	return nil
}
