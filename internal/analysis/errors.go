package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingColumn is wrapped when an aggregate needs a column the view lacks.
var ErrMissingColumn = errors.New("missing column")

// EmptyResultWarning indicates the current selection filtered either table
// down to zero rows. It is not fatal: only the aggregates are skipped.
type EmptyResultWarning struct {
	DailyRows  int
	HourlyRows int
}

func (w *EmptyResultWarning) Error() string {
	return fmt.Sprintf("current filters produce an empty dataset (daily rows: %d, hourly rows: %d); change the filters",
		w.DailyRows, w.HourlyRows)
}

func (w *EmptyResultWarning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message    string `json:"message"`
		DailyRows  int    `json:"daily_rows"`
		HourlyRows int    `json:"hourly_rows"`
	}{w.Error(), w.DailyRows, w.HourlyRows})
}

// MissingTargetColumnError indicates the correlation target is not among the
// numeric columns of the filtered daily view.
type MissingTargetColumnError struct {
	Column string
}

func (e *MissingTargetColumnError) Error() string {
	return fmt.Sprintf("column %q not found in the filtered daily data", e.Column)
}
