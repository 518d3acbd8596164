package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// KPIs are the headline figures over the filtered daily view.
type KPIs struct {
	Total   float64 `json:"total"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	Records int     `json:"records"`
}

// HourPoint is the mean rental count for one hour of the day.
type HourPoint struct {
	Hour int     `json:"hour"`
	Mean float64 `json:"mean"`
}

// SeasonPoint is the mean daily rental count for one season.
type SeasonPoint struct {
	Season dataset.Season `json:"season"`
	Mean   float64        `json:"mean"`
}

// Correlation is the Pearson coefficient of one feature against cnt.
// Defined is false when the coefficient cannot be computed.
type Correlation struct {
	Feature     string  `json:"feature"`
	Coefficient float64 `json:"r"`
	Defined     bool    `json:"defined"`
}

// CorrelationCandidates are the columns ranked against cnt, when present.
var CorrelationCandidates = []string{
	dataset.ColTemp, dataset.ColATemp, dataset.ColHumidity, dataset.ColWindSpeed,
	dataset.ColCasual, dataset.ColRegistered, dataset.ColCount,
}

func requireColumns(df dataframe.DataFrame, cols ...string) error {
	for _, c := range cols {
		if !dataset.HasColumn(df, c) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}

// ComputeKPIs sums, averages and maximizes cnt over the daily view.
// Missing counts are left out of every figure; Records counts rows.
func ComputeKPIs(daily dataframe.DataFrame) (KPIs, error) {
	if err := requireColumns(daily, dataset.ColCount); err != nil {
		return KPIs{}, err
	}
	cnt := present(daily.Col(dataset.ColCount).Float())
	k := KPIs{Total: sumOf(cnt), Records: daily.Nrow()}
	if m, ok := meanOf(cnt); ok {
		k.Mean = round2(m)
	}
	if m, ok := maxOf(cnt); ok {
		k.Max = m
	}
	return k, nil
}

// HourlyProfile averages cnt per hour present in the hourly view, ordered by
// hour. Rows whose hour is missing, fractional or outside 0-23 are skipped,
// as are hours with no counts.
func HourlyProfile(hourly dataframe.DataFrame) ([]HourPoint, error) {
	if err := requireColumns(hourly, dataset.ColHour, dataset.ColCount); err != nil {
		return nil, err
	}
	hours := hourly.Col(dataset.ColHour).Float()
	cnt := hourly.Col(dataset.ColCount).Float()

	acc := make(map[int][]float64)
	for i, code := range hours {
		h, ok := dataset.HourFromCode(code)
		if !ok || math.IsNaN(cnt[i]) {
			continue
		}
		acc[h] = append(acc[h], cnt[i])
	}
	out := make([]HourPoint, 0, len(acc))
	for h, vals := range acc {
		m, _ := meanOf(vals)
		out = append(out, HourPoint{Hour: h, Mean: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

// SeasonalProfile averages cnt per season present in the daily view,
// highest mean first. Equal means keep first-occurrence order.
func SeasonalProfile(daily dataframe.DataFrame) ([]SeasonPoint, error) {
	if err := requireColumns(daily, dataset.ColSeasonName, dataset.ColCount); err != nil {
		return nil, err
	}
	names := daily.Col(dataset.ColSeasonName).Records()
	cnt := daily.Col(dataset.ColCount).Float()

	var order []dataset.Season
	acc := make(map[dataset.Season][]float64)
	for i, name := range names {
		s, err := dataset.ParseSeason(name)
		if err != nil {
			continue
		}
		if _, seen := acc[s]; !seen {
			order = append(order, s)
			acc[s] = nil
		}
		if !math.IsNaN(cnt[i]) {
			acc[s] = append(acc[s], cnt[i])
		}
	}
	out := make([]SeasonPoint, 0, len(order))
	for _, s := range order {
		m, ok := meanOf(acc[s])
		if !ok {
			continue
		}
		out = append(out, SeasonPoint{Season: s, Mean: m})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean > out[j].Mean })
	return out, nil
}

// CorrelationRanking correlates every available numeric candidate column
// with cnt and sorts the result descending. cnt itself is always 1.0 and
// leads; coefficients that cannot be computed are listed last.
func CorrelationRanking(daily dataframe.DataFrame) ([]Correlation, error) {
	var available []string
	for _, c := range CorrelationCandidates {
		if dataset.HasColumn(daily, c) && daily.Col(c).Type() != series.String {
			available = append(available, c)
		}
	}
	hasTarget := false
	for _, c := range available {
		if c == dataset.ColCount {
			hasTarget = true
		}
	}
	if !hasTarget {
		return nil, &MissingTargetColumnError{Column: dataset.ColCount}
	}

	target := daily.Col(dataset.ColCount).Float()
	out := make([]Correlation, 0, len(available))
	for _, c := range available {
		if c == dataset.ColCount {
			out = append(out, Correlation{Feature: c, Coefficient: 1, Defined: true})
			continue
		}
		r, ok := pearson(daily.Col(c).Float(), target)
		out = append(out, Correlation{Feature: c, Coefficient: r, Defined: ok})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Defined != b.Defined {
			return a.Defined
		}
		if a.Coefficient != b.Coefficient {
			return a.Coefficient > b.Coefficient
		}
		return a.Feature == dataset.ColCount && b.Feature != dataset.ColCount
	})
	return out, nil
}
