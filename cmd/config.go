package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	cfgpkg "github.com/KaramelBytes/bikeshare-dashboard/internal/config"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bikeshare configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_dirs: %s\n", strings.Join(cfg.DataDirs, ","))
		fmt.Fprintf(out, "day_file: %s\n", cfg.DayFile)
		fmt.Fprintf(out, "hour_file: %s\n", cfg.HourFile)
		fmt.Fprintf(out, "default_seasons: %s\n", strings.Join(cfg.DefaultSeasons, ","))
		fmt.Fprintf(out, "default_workingday: %s\n", cfg.DefaultWorkingDay)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		exportDir := cfg.ExportDir
		if exportDir == "" {
			exportDir = "(working directory)"
		}
		fmt.Fprintf(out, "export_dir: %s\n", exportDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Edit the file's own values so defaults and env overrides stay out of it.
		fileCfg, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_dirs":
			fileCfg.DataDirs = splitList(val)
		case "day_file":
			fileCfg.DayFile = val
		case "hour_file":
			fileCfg.HourFile = val
		case "default_seasons":
			seasons := splitList(val)
			sel, err := analysis.ParseSelection(seasons, "")
			if err != nil {
				return fmt.Errorf("invalid default_seasons: %w", err)
			}
			fileCfg.DefaultSeasons = sel.SeasonNames()
		case "default_workingday":
			mode, err := analysis.ParseWorkingDayMode(val)
			if err != nil {
				return fmt.Errorf("invalid default_workingday: %w", err)
			}
			fileCfg.DefaultWorkingDay = mode.String()
		case "listen_addr":
			fileCfg.ListenAddr = val
		case "log_level":
			fileCfg.LogLevel = strings.ToLower(logging.ParseLevel(val).String())
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				fileCfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "export_dir":
			fileCfg.ExportDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(fileCfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
