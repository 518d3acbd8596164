package dataset

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// HasColumn reports whether df carries a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from df, sorted.
func MissingColumns(df dataframe.DataFrame, required []string) []string {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate checks both tables against their required column sets and
// reports every gap in a single *SchemaError.
func Validate(t *Tables) error {
	md := MissingColumns(t.Daily, RequiredDailyColumns())
	mh := MissingColumns(t.Hourly, RequiredHourlyColumns())
	if len(md) > 0 || len(mh) > 0 {
		return &SchemaError{MissingDaily: md, MissingHourly: mh}
	}
	return nil
}
