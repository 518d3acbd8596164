package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/go-gota/gota/dataframe"
)

// WorkingDayMode is the tri-state working-day filter.
type WorkingDayMode int

const (
	AllDays WorkingDayMode = iota
	WorkingDaysOnly
	WeekendHoliday
)

func (m WorkingDayMode) String() string {
	switch m {
	case WorkingDaysOnly:
		return "working"
	case WeekendHoliday:
		return "weekend"
	default:
		return "all"
	}
}

// Label is the human-facing name of the mode.
func (m WorkingDayMode) Label() string {
	switch m {
	case WorkingDaysOnly:
		return "Working Day Only"
	case WeekendHoliday:
		return "Weekend/Holiday"
	default:
		return "All"
	}
}

// ParseWorkingDayMode accepts the short forms (all, working, weekend) and
// the labels, case-insensitively. Empty input means AllDays.
func ParseWorkingDayMode(s string) (WorkingDayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllDays, nil
	case "working", "workingday", "working day only", "1":
		return WorkingDaysOnly, nil
	case "weekend", "holiday", "weekend/holiday", "0":
		return WeekendHoliday, nil
	default:
		return AllDays, fmt.Errorf("unknown working-day mode: %q (use all, working or weekend)", s)
	}
}

func (m WorkingDayMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *WorkingDayMode) UnmarshalText(b []byte) error {
	v, err := ParseWorkingDayMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m WorkingDayMode) matches(flag float64) bool {
	switch m {
	case WorkingDaysOnly:
		return flag == 1
	case WeekendHoliday:
		return flag == 0
	default:
		return true
	}
}

// Selection is the user's current filter choice.
type Selection struct {
	Seasons    []dataset.Season `json:"seasons"`
	WorkingDay WorkingDayMode   `json:"working_day"`
}

// DefaultSelection selects every season and every day.
func DefaultSelection() Selection {
	return Selection{Seasons: dataset.Seasons(), WorkingDay: AllDays}
}

// ParseSelection builds a Selection from season names and a mode string.
// Duplicate seasons are dropped; an empty name list selects nothing.
func ParseSelection(seasons []string, mode string) (Selection, error) {
	wd, err := ParseWorkingDayMode(mode)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{Seasons: []dataset.Season{}, WorkingDay: wd}
	seen := make(map[dataset.Season]bool)
	for _, name := range seasons {
		s, err := dataset.ParseSeason(name)
		if err != nil {
			return Selection{}, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		sel.Seasons = append(sel.Seasons, s)
	}
	return sel, nil
}

// SeasonNames returns the selected season names in selection order.
func (s Selection) SeasonNames() []string {
	out := make([]string, 0, len(s.Seasons))
	for _, season := range s.Seasons {
		out = append(out, season.String())
	}
	return out
}

// Filter returns the rows of df whose season_name is selected and whose
// workingday flag matches the mode. A constraint whose column is absent is
// skipped. df is not modified; an empty result is valid.
func Filter(df dataframe.DataFrame, sel Selection) dataframe.DataFrame {
	bySeason := dataset.HasColumn(df, dataset.ColSeasonName)
	byWorkingDay := sel.WorkingDay != AllDays && dataset.HasColumn(df, dataset.ColWorkingDay)

	var names []string
	if bySeason {
		names = df.Col(dataset.ColSeasonName).Records()
	}
	var flags []float64
	if byWorkingDay {
		flags = df.Col(dataset.ColWorkingDay).Float()
	}
	allowed := make(map[string]bool, len(sel.Seasons))
	for _, s := range sel.Seasons {
		allowed[s.String()] = true
	}

	keep := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if bySeason && !allowed[names[i]] {
			continue
		}
		if byWorkingDay && (math.IsNaN(flags[i]) || !sel.WorkingDay.matches(flags[i])) {
			continue
		}
		keep = append(keep, i)
	}
	return df.Subset(keep)
}
