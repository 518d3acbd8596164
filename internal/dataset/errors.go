package dataset

import (
	"fmt"
	"strings"
)

// DataNotFoundError indicates that no candidate directory yielded a readable
// pair of daily and hourly files.
type DataNotFoundError struct {
	Candidates []string
	DayFile    string
	HourFile   string
	Err        error
}

func (e *DataNotFoundError) Error() string {
	msg := fmt.Sprintf("cannot load data: make sure %q and %q exist in one of [%s]",
		e.DayFile, e.HourFile, strings.Join(e.Candidates, ", "))
	if e.Err != nil {
		msg += fmt.Sprintf("; last error: %v", e.Err)
	}
	return msg
}

func (e *DataNotFoundError) Unwrap() error { return e.Err }

// SchemaError lists the required columns missing from each table.
type SchemaError struct {
	MissingDaily  []string
	MissingHourly []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: daily lacks [%s]; hourly lacks [%s]",
		strings.Join(e.MissingDaily, ", "), strings.Join(e.MissingHourly, ", "))
}
