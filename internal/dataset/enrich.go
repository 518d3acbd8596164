package dataset

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naLabel is how gota marks a missing element in a string series.
const naLabel = "NaN"

// Enrich returns a copy of df with season_name and, when a weekday column
// exists, weekday_name. Codes that do not map yield a missing label.
func Enrich(df dataframe.DataFrame) dataframe.DataFrame {
	out := df.Copy()
	if HasColumn(out, ColSeason) {
		codes := out.Col(ColSeason).Float()
		names := make([]string, len(codes))
		for i, c := range codes {
			names[i] = naLabel
			if s, ok := SeasonFromCode(c); ok {
				names[i] = s.String()
			}
		}
		out = out.Mutate(series.New(names, series.String, ColSeasonName))
	}
	if HasColumn(out, ColWeekday) {
		codes := out.Col(ColWeekday).Float()
		names := make([]string, len(codes))
		for i, c := range codes {
			names[i] = naLabel
			if n, ok := WeekdayName(c); ok {
				names[i] = n
			}
		}
		out = out.Mutate(series.New(names, series.String, ColWeekdayName))
	}
	return out
}

// Prepare validates raw tables and returns enriched copies.
func Prepare(t *Tables) (*Tables, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	return &Tables{
		Daily:  Enrich(t.Daily),
		Hourly: Enrich(t.Hourly),
		Dir:    t.Dir,
	}, nil
}
