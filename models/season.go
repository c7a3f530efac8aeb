package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	MinSeason = 1999
	MaxSeason = 2100
	MaxWeek   = 22
)

// ErrInvalidSeasonWeek is returned for out-of-range or malformed season/week values.
var ErrInvalidSeasonWeek = errors.New("invalid season/week")

// SeasonWeek identifies one week of one NFL season.
type SeasonWeek struct {
	Season int `json:"season"`
	Week   int `json:"week"`
}

func (sw SeasonWeek) String() string {
	return fmt.Sprintf("%d/wk%d", sw.Season, sw.Week)
}

// Validate checks the season and week ranges.
func (sw SeasonWeek) Validate() error {
	if sw.Season < MinSeason || sw.Season > MaxSeason {
		return fmt.Errorf("%w: season %d out of range", ErrInvalidSeasonWeek, sw.Season)
	}
	if sw.Week < 1 || sw.Week > MaxWeek {
		return fmt.Errorf("%w: week %d out of range", ErrInvalidSeasonWeek, sw.Week)
	}
	return nil
}

// Before reports whether sw comes strictly before other.
func (sw SeasonWeek) Before(other SeasonWeek) bool {
	if sw.Season != other.Season {
		return sw.Season < other.Season
	}
	return sw.Week < other.Week
}

// ParseSeasonWeek parses and validates string season/week values.
func ParseSeasonWeek(season, week string) (SeasonWeek, error) {
	s, err := strconv.Atoi(season)
	if err != nil {
		return SeasonWeek{}, fmt.Errorf("%w: season %q", ErrInvalidSeasonWeek, season)
	}
	w, err := strconv.Atoi(week)
	if err != nil {
		return SeasonWeek{}, fmt.Errorf("%w: week %q", ErrInvalidSeasonWeek, week)
	}
	sw := SeasonWeek{Season: s, Week: w}
	if err := sw.Validate(); err != nil {
		return SeasonWeek{}, err
	}
	return sw, nil
}

// GameDayFormat is the layout schedule game days are stored in.
const GameDayFormat = "2006-01-02"

// Today formats t as a schedule game day.
func Today(t time.Time) string {
	return t.Format(GameDayFormat)
}

// AgeAt returns fractional years between birth and the start of the season (Sept 1).
func AgeAt(birth time.Time, season int) float64 {
	start := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
	return start.Sub(birth).Hours() / 24 / 365.25
}
