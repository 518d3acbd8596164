package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/bikeshare-dashboard/internal/config"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics go to stderr; command output goes to the command's writer.
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "bikeshare",
	Short: "Bike-share dashboard: rental demand by season and working day",
	Long: `bikeshare loads the daily and hourly bike-sharing tables, filters them by
season and working-day status, and reports KPIs, the hourly demand pattern,
average daily demand per season and feature correlations with total rentals.
Reports are printed as Markdown or JSON, exported as CSV/XLSX, or served over HTTP.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bikeshare/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{DayFile: "day.csv", HourFile: "hour.csv", DefaultWorkingDay: "all", LogLevel: "info", LogFormat: "text"}
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(level, cfg.LogFormat, os.Stderr)
}
