package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/afero"
)

// Tables holds the daily and hourly tables loaded from one directory.
type Tables struct {
	Daily  dataframe.DataFrame
	Hourly dataframe.DataFrame
	// Dir is the candidate directory the tables were read from.
	Dir string
}

// LoaderOptions controls where and how the source files are read.
type LoaderOptions struct {
	DayFile  string
	HourFile string
	Logger   *slog.Logger
}

// DefaultLoaderOptions returns the standard day.csv/hour.csv layout.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{DayFile: "day.csv", HourFile: "hour.csv"}
}

// Loader reads the two source tables and memoizes the result per
// candidate list for the lifetime of the Loader.
type Loader struct {
	fs     afero.Fs
	opt    LoaderOptions
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Tables
}

// NewLoader constructs a Loader over fs. A nil fs means the OS filesystem.
func NewLoader(fs afero.Fs, opt LoaderOptions) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	def := DefaultLoaderOptions()
	if opt.DayFile == "" {
		opt.DayFile = def.DayFile
	}
	if opt.HourFile == "" {
		opt.HourFile = def.HourFile
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fs:     fs,
		opt:    opt,
		logger: logger.With(slog.String("component", "loader")),
		cache:  make(map[string]*Tables),
	}
}

// Load tries each candidate directory in order and returns the first one
// whose daily and hourly files both parse. Successful results are cached,
// so the returned *Tables must be treated as read-only.
func (l *Loader) Load(candidates []string) (*Tables, error) {
	key := strings.Join(candidates, "\x00")

	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.cache[key]; ok {
		return t, nil
	}

	var lastErr error
	for _, dir := range candidates {
		t, err := l.loadDir(dir)
		if err != nil {
			l.logger.Debug("candidate rejected", slog.String("dir", dir), slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		l.logger.Info("data loaded",
			slog.String("dir", dir),
			slog.Int("daily_rows", t.Daily.Nrow()),
			slog.Int("hourly_rows", t.Hourly.Nrow()))
		l.cache[key] = t
		return t, nil
	}
	return nil, &DataNotFoundError{
		Candidates: append([]string(nil), candidates...),
		DayFile:    l.opt.DayFile,
		HourFile:   l.opt.HourFile,
		Err:        lastErr,
	}
}

func (l *Loader) loadDir(dir string) (*Tables, error) {
	day, err := l.readTable(filepath.Join(dir, l.opt.DayFile))
	if err != nil {
		return nil, err
	}
	hour, err := l.readTable(filepath.Join(dir, l.opt.HourFile))
	if err != nil {
		return nil, err
	}
	return &Tables{Daily: day, Hourly: hour, Dir: dir}, nil
}

func (l *Loader) readTable(path string) (dataframe.DataFrame, error) {
	r, err := readerFor(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	b, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	df, err := r.Read(b)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return df, nil
}

// DefaultCandidates returns the data directory next to the executable
// (<exe>/../data) followed by ./data under the working directory.
func DefaultCandidates() []string {
	var out []string
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Clean(filepath.Join(filepath.Dir(exe), "..", "data")))
	}
	if wd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(wd, "data"))
	}
	return out
}

// Candidates puts the configured directories ahead of the defaults,
// dropping empty entries and duplicates.
func Candidates(configured []string, defaults []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range append(append([]string(nil), configured...), defaults...) {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
