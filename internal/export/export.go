package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// View is a named table to export, e.g. the filtered daily view.
type View struct {
	Name  string
	Frame dataframe.DataFrame
}

// Format writes views in one file format.
type Format interface {
	Name() string
	Extension() string
	ContentType() string
	Write(w io.Writer, views ...View) error
}

var registry []Format

// Register adds a format implementation to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// ErrUnsupported indicates an export format is not registered.
var ErrUnsupported = errors.New("unsupported export format")

// Lookup finds a format by name or extension, case-insensitively.
func Lookup(name string) (Format, error) {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	for _, f := range registry {
		if n == f.Name() || n == f.Extension() {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// ForPath selects a format from the file extension of path.
func ForPath(path string) (Format, error) {
	return Lookup(filepath.Ext(path))
}

// ErrUnknownDataset indicates a dataset name other than daily, hourly or all.
var ErrUnknownDataset = errors.New("unknown dataset")

// SelectViews picks the filtered views named by dataset: daily, hourly, or
// all for both. Formats that hold a single table reject all.
func SelectViews(dataset string, f Format, daily, hourly dataframe.DataFrame) ([]View, error) {
	var views []View
	switch strings.ToLower(strings.TrimSpace(dataset)) {
	case "daily":
		views = []View{{Name: "daily", Frame: daily}}
	case "hourly":
		views = []View{{Name: "hourly", Frame: hourly}}
	case "all":
		if f.Name() == "csv" {
			return nil, fmt.Errorf("%w: %s holds one table, choose daily or hourly", ErrUnsupported, f.Name())
		}
		views = []View{{Name: "daily", Frame: daily}, {Name: "hourly", Frame: hourly}}
	default:
		return nil, fmt.Errorf("%w: %q (use daily, hourly or all)", ErrUnknownDataset, dataset)
	}
	return views, nil
}

// FileName is the download name of a filtered view, e.g. daily_filtered.csv.
func FileName(view string, f Format) string {
	return view + "_filtered." + f.Extension()
}

// WriteFile renders views with f and writes the result atomically to path.
func WriteFile(path string, f Format, views ...View) error {
	var buf bytes.Buffer
	if err := f.Write(&buf, views...); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// cellFunc returns row r of one column as a string or float64, and false
// when the cell is missing.
type cellFunc func(r int) (any, bool)

// columnCells reads every column of df once. Text columns keep their
// records; the rest are read as floats with NaN as missing.
func columnCells(df dataframe.DataFrame) []cellFunc {
	names := df.Names()
	cols := make([]cellFunc, len(names))
	for j, n := range names {
		s := df.Col(n)
		if s.Type() == series.String || s.Type() == series.Bool {
			recs := s.Records()
			nan := s.IsNaN()
			cols[j] = func(r int) (any, bool) { return recs[r], !nan[r] }
			continue
		}
		vals := s.Float()
		cols[j] = func(r int) (any, bool) { return vals[r], !math.IsNaN(vals[r]) }
	}
	return cols
}

func init() {
	Register(csvFormat{})
	Register(xlsxFormat{})
}
