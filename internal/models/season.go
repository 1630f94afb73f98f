package models

import (
	"strconv"
	"time"
)

// Season describes one academic term in the catalog.
type Season struct {
	Code          string  `json:"code"`
	Year          int     `json:"year"`
	Term          string  `json:"term"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	CurrentSeason bool    `json:"current_season,omitempty"`
}

// SeasonInfo lists available seasons alongside the current one.
type SeasonInfo struct {
	Seasons          []Season `json:"seasons"`
	CurrentSeason    string   `json:"current_season"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

// ValidateSeasonCode checks the YYYYTT season code format: a 4-digit year in
// [2000,2100] followed by a term number in [1,3].
func ValidateSeasonCode(code string) bool {
	if len(code) != 6 {
		return false
	}

	year, err := strconv.Atoi(code[:4])
	if err != nil {
		return false
	}
	term, err := strconv.Atoi(code[4:])
	if err != nil {
		return false
	}

	return year >= 2000 && year <= 2100 && term >= 1 && term <= 3
}

// CurrentSeasonCode derives the season code for a point in time:
// August-December is fall ("01"), January-May is spring ("02"),
// June-July is summer ("03").
func CurrentSeasonCode(now time.Time) string {
	year := now.Year()
	var term string
	switch month := int(now.Month()); {
	case month >= 8:
		term = "01"
	case month <= 5:
		term = "02"
	default:
		term = "03"
	}
	return strconv.Itoa(year) + term
}
