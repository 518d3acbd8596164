package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders the view model as a compact text report.
func (vm *ViewModel) Markdown() string {
	var b strings.Builder
	b.WriteString("[FILTERS]\n")
	seasons := "(none)"
	if len(vm.Selection.Seasons) > 0 {
		seasons = strings.Join(vm.Selection.SeasonNames(), ", ")
	}
	b.WriteString(fmt.Sprintf("Season: %s\n", seasons))
	b.WriteString(fmt.Sprintf("Working Day: %s\n", vm.Selection.WorkingDay.Label()))
	b.WriteString(fmt.Sprintf("Rows: daily %d, hourly %d\n", vm.DailyRows, vm.HourlyRows))

	if vm.Warning != nil {
		b.WriteString("\n[NOTES]\n- ")
		b.WriteString(vm.Warning.Error())
		b.WriteString("\n")
		return b.String()
	}

	if vm.KPIs != nil {
		b.WriteString("\n[KPIS]\n")
		b.WriteString(fmt.Sprintf("- Total Rentals (daily): %.0f\n", vm.KPIs.Total))
		b.WriteString(fmt.Sprintf("- Avg Rentals / Day: %.2f\n", vm.KPIs.Mean))
		b.WriteString(fmt.Sprintf("- Max Rentals / Day: %.0f\n", vm.KPIs.Max))
		b.WriteString(fmt.Sprintf("- Records: %d\n", vm.KPIs.Records))
	}

	if len(vm.Hourly) > 0 {
		b.WriteString("\n[HOURLY DEMAND PATTERN]\n")
		b.WriteString("| hour | avg rentals |\n| --- | --- |\n")
		for _, p := range vm.Hourly {
			b.WriteString(fmt.Sprintf("| %d | %.2f |\n", p.Hour, p.Mean))
		}
	}

	if len(vm.Seasonal) > 0 {
		b.WriteString("\n[DAILY DEMAND BY SEASON]\n")
		b.WriteString("| season | avg daily rentals |\n| --- | --- |\n")
		for _, p := range vm.Seasonal {
			b.WriteString(fmt.Sprintf("| %s | %.2f |\n", p.Season, p.Mean))
		}
	}

	b.WriteString("\n[CORRELATION WITH TOTAL RENTALS]\n")
	if vm.CorrelationErr != nil {
		b.WriteString(fmt.Sprintf("- error: %v\n", vm.CorrelationErr))
	}
	for _, c := range vm.Correlations {
		if !c.Defined {
			b.WriteString(fmt.Sprintf("- %s: r=n/a\n", c.Feature))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: r=%.3f\n", c.Feature, c.Coefficient))
	}
	return b.String()
}
