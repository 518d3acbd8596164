package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/export"
	"github.com/spf13/cobra"
)

var (
	expFlags      selectionFlags
	expDataset    string
	expFormat     string
	expOutputPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered daily or hourly view as CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// --format wins; otherwise the output extension decides, then csv.
		var f export.Format
		var err error
		switch {
		case expFormat != "":
			f, err = export.Lookup(expFormat)
		case expOutputPath != "":
			f, err = export.ForPath(expOutputPath)
		default:
			f, err = export.Lookup("csv")
		}
		if err != nil {
			return err
		}

		sel, err := expFlags.selection(cmd)
		if err != nil {
			return err
		}
		tables, err := expFlags.loadTables()
		if err != nil {
			return err
		}
		vm, err := analysis.Render(&analysis.Session{Selection: sel}, tables)
		if err != nil {
			return err
		}
		views, err := export.SelectViews(expDataset, f, vm.FilteredDaily, vm.FilteredHourly)
		if err != nil {
			return err
		}

		path := expOutputPath
		if path == "" {
			path = filepath.Join(cfg.ExportDir, export.FileName(strings.ToLower(expDataset), f))
		}
		if err := export.WriteFile(path, f, views...); err != nil {
			return err
		}
		for _, v := range views {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s view (%d rows) to %s\n", v.Name, v.Frame.Nrow(), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	expFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&expDataset, "dataset", "daily", "view to export: daily | hourly | all (all requires xlsx)")
	exportCmd.Flags().StringVar(&expFormat, "format", "", "export format: csv | xlsx (default from --output extension, else csv)")
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path (default <export_dir>/<dataset>_filtered.<ext>)")
}
