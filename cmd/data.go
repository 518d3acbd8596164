package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/spf13/cobra"
)

// selectionFlags are the filter and data-source flags shared by report,
// export and serve.
type selectionFlags struct {
	seasons    []string
	workingDay string
	dataDirs   []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.seasons, "season", nil, "seasons to include: Spring,Summer,Fall,Winter (repeatable; default from config)")
	cmd.Flags().StringVar(&f.workingDay, "workingday", "", "working-day filter: all | working | weekend (default from config)")
	cmd.Flags().StringSliceVar(&f.dataDirs, "data-dir", nil, "directory holding day.csv and hour.csv, tried before configured dirs (repeatable)")
}

// selection resolves the flags against the configured defaults. An explicit
// empty --season selects no season.
func (f *selectionFlags) selection(cmd *cobra.Command) (analysis.Selection, error) {
	seasons := cfg.DefaultSeasons
	if len(seasons) == 0 {
		seasons = analysis.DefaultSelection().SeasonNames()
	}
	if cmd.Flags().Changed("season") {
		seasons = nil
		for _, s := range f.seasons {
			if s = strings.TrimSpace(s); s != "" {
				seasons = append(seasons, s)
			}
		}
	}
	mode := cfg.DefaultWorkingDay
	if cmd.Flags().Changed("workingday") {
		mode = f.workingDay
	}
	return analysis.ParseSelection(seasons, mode)
}

// loadTables locates, validates and enriches the two source tables.
func (f *selectionFlags) loadTables() (*dataset.Tables, error) {
	opt := dataset.DefaultLoaderOptions()
	opt.DayFile = cfg.DayFile
	opt.HourFile = cfg.HourFile
	opt.Logger = logger

	configured := append(append([]string(nil), f.dataDirs...), cfg.DataDirs...)
	raw, err := dataset.NewLoader(nil, opt).Load(dataset.Candidates(configured, dataset.DefaultCandidates()))
	if err != nil {
		var nf *dataset.DataNotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w (use --data-dir or 'bikeshare config set data_dirs <dir>')", err)
		}
		return nil, err
	}
	logger.Debug("tables loaded",
		slog.String("dir", raw.Dir),
		slog.Int("daily_rows", raw.Daily.Nrow()),
		slog.Int("hourly_rows", raw.Hourly.Nrow()),
	)
	return dataset.Prepare(raw)
}
