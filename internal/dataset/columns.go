package dataset

import (
	"fmt"
	"math"
	"strings"
)

// Column names of the bike-sharing day/hour tables.
const (
	ColSeason      = "season"
	ColWorkingDay  = "workingday"
	ColWeekday     = "weekday"
	ColTemp        = "temp"
	ColATemp       = "atemp"
	ColHumidity    = "hum"
	ColWindSpeed   = "windspeed"
	ColCasual      = "casual"
	ColRegistered  = "registered"
	ColCount       = "cnt"
	ColHour        = "hr"
	ColSeasonName  = "season_name"
	ColWeekdayName = "weekday_name"
)

// RequiredDailyColumns lists the columns every daily table must carry.
func RequiredDailyColumns() []string {
	return []string{
		ColSeason, ColWorkingDay, ColTemp, ColATemp, ColHumidity,
		ColWindSpeed, ColCasual, ColRegistered, ColCount,
	}
}

// RequiredHourlyColumns is RequiredDailyColumns plus the hour of day.
func RequiredHourlyColumns() []string {
	return append(RequiredDailyColumns(), ColHour)
}

// Season is the ordered season category. Its integer value equals the
// season code used in the source data.
type Season int

const (
	SeasonUnknown Season = iota
	Spring
	Summer
	Fall
	Winter
)

var seasonNames = [...]string{"", "Spring", "Summer", "Fall", "Winter"}

// Seasons returns all seasons in display order.
func Seasons() []Season {
	return []Season{Spring, Summer, Fall, Winter}
}

func (s Season) String() string {
	if s < Spring || s > Winter {
		return ""
	}
	return seasonNames[s]
}

// Valid reports whether s is one of the four named seasons.
func (s Season) Valid() bool { return s >= Spring && s <= Winter }

// SeasonFromCode maps a numeric season code (1-4) to its Season.
// NaN, fractional and out-of-range codes are not mapped.
func SeasonFromCode(code float64) (Season, bool) {
	if math.IsNaN(code) || code != math.Trunc(code) {
		return SeasonUnknown, false
	}
	s := Season(int(code))
	if !s.Valid() {
		return SeasonUnknown, false
	}
	return s, true
}

// ParseSeason resolves a season name, case-insensitively.
func ParseSeason(name string) (Season, error) {
	n := strings.TrimSpace(name)
	for _, s := range Seasons() {
		if strings.EqualFold(n, s.String()) {
			return s, nil
		}
	}
	return SeasonUnknown, fmt.Errorf("unknown season: %q (use Spring, Summer, Fall or Winter)", name)
}

func (s Season) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid season %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Season) UnmarshalText(b []byte) error {
	v, err := ParseSeason(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// HourFromCode maps an hour-of-day value to 0-23. NaN, fractional and
// out-of-range values are not mapped.
func HourFromCode(code float64) (int, bool) {
	if math.IsNaN(code) || code != math.Trunc(code) || code < 0 || code > 23 {
		return 0, false
	}
	return int(code), true
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayName maps a weekday code (0 = Sunday) to its three-letter name.
func WeekdayName(code float64) (string, bool) {
	if math.IsNaN(code) || code != math.Trunc(code) || code < 0 || code > 6 {
		return "", false
	}
	return weekdayNames[int(code)], true
}
