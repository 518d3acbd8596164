package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repFlags      selectionFlags
	repOutputPath string
	repJSON       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Filter the tables and print KPIs, demand patterns and correlations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := repFlags.selection(cmd)
		if err != nil {
			return err
		}
		tables, err := repFlags.loadTables()
		if err != nil {
			return err
		}
		vm, err := analysis.Render(&analysis.Session{Selection: sel}, tables)
		if err != nil {
			return err
		}
		if vm.Warning != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", vm.Warning)
		}

		var out []byte
		if repJSON {
			if out, err = utils.PrettyJSON(vm); err != nil {
				return err
			}
		} else {
			out = []byte(vm.Markdown())
		}

		if repOutputPath != "" {
			if err := utils.SafeWriteFile(repOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", repOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	repFlags.register(reportCmd)
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "optional path to write the report")
	reportCmd.Flags().BoolVar(&repJSON, "json", false, "emit the view model as JSON instead of Markdown")
}
