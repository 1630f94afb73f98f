package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSeasonCode(t *testing.T) {
	cases := []struct {
		name string
		code string
		want bool
	}{
		{name: "valid fall", code: "202501", want: true},
		{name: "valid spring", code: "202602", want: true},
		{name: "valid summer", code: "202503", want: true},
		{name: "too short", code: "20251", want: false},
		{name: "too long", code: "2025011", want: false},
		{name: "term zero", code: "202500", want: false},
		{name: "term above range", code: "202504", want: false},
		{name: "year below range", code: "199901", want: false},
		{name: "year above range", code: "210101", want: false},
		{name: "not numeric", code: "2025ab", want: false},
		{name: "empty", code: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateSeasonCode(tc.code))
		})
	}
}

func TestCurrentSeasonCode(t *testing.T) {
	at := func(month time.Month) time.Time {
		return time.Date(2025, month, 15, 12, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, "202501", CurrentSeasonCode(at(time.September)), "fall term from august onward")
	assert.Equal(t, "202501", CurrentSeasonCode(at(time.December)))
	assert.Equal(t, "202502", CurrentSeasonCode(at(time.February)), "spring term through may")
	assert.Equal(t, "202502", CurrentSeasonCode(at(time.May)))
	assert.Equal(t, "202503", CurrentSeasonCode(at(time.June)), "summer term june and july")
	assert.Equal(t, "202503", CurrentSeasonCode(at(time.July)))
}
