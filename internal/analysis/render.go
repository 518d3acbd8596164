package analysis

import (
	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/go-gota/gota/dataframe"
)

// Session is the per-user state: an id and the current filter selection.
type Session struct {
	ID        string    `json:"id"`
	Selection Selection `json:"selection"`
}

// NewSession returns a session with the default selection.
func NewSession(id string) *Session {
	return &Session{ID: id, Selection: DefaultSelection()}
}

// ViewModel is everything the presentation layer needs for one interaction.
type ViewModel struct {
	Selection  Selection `json:"selection"`
	DailyRows  int       `json:"daily_rows"`
	HourlyRows int       `json:"hourly_rows"`

	// Warning is set when a filtered view is empty; aggregates are then nil.
	Warning *EmptyResultWarning `json:"warning,omitempty"`

	KPIs         *KPIs         `json:"kpis,omitempty"`
	Hourly       []HourPoint   `json:"hourly,omitempty"`
	Seasonal     []SeasonPoint `json:"seasonal,omitempty"`
	Correlations []Correlation `json:"correlations,omitempty"`
	// CorrelationErr only affects the correlation ranking.
	CorrelationErr   error  `json:"-"`
	CorrelationError string `json:"correlation_error,omitempty"`

	// Filtered views, kept for exports.
	FilteredDaily  dataframe.DataFrame `json:"-"`
	FilteredHourly dataframe.DataFrame `json:"-"`
}

// Render filters the prepared tables with the session selection and
// computes every aggregate. It never modifies the tables.
func Render(s *Session, t *dataset.Tables) (*ViewModel, error) {
	sel := DefaultSelection()
	if s != nil {
		sel = s.Selection
	}
	daily := Filter(t.Daily, sel)
	hourly := Filter(t.Hourly, sel)

	vm := &ViewModel{
		Selection:      sel,
		DailyRows:      daily.Nrow(),
		HourlyRows:     hourly.Nrow(),
		FilteredDaily:  daily,
		FilteredHourly: hourly,
	}
	if vm.DailyRows == 0 || vm.HourlyRows == 0 {
		vm.Warning = &EmptyResultWarning{DailyRows: vm.DailyRows, HourlyRows: vm.HourlyRows}
		return vm, nil
	}

	kpis, err := ComputeKPIs(daily)
	if err != nil {
		return nil, err
	}
	vm.KPIs = &kpis
	if vm.Hourly, err = HourlyProfile(hourly); err != nil {
		return nil, err
	}
	if vm.Seasonal, err = SeasonalProfile(daily); err != nil {
		return nil, err
	}
	vm.Correlations, vm.CorrelationErr = CorrelationRanking(daily)
	if vm.CorrelationErr != nil {
		vm.CorrelationError = vm.CorrelationErr.Error()
	}
	return vm, nil
}
