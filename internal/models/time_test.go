package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		name   string
		clock  string
		want   int
		wantOK bool
	}{
		{name: "morning", clock: "09:00", want: 540, wantOK: true},
		{name: "with seconds", clock: "13:30:00", want: 810, wantOK: true},
		{name: "midnight", clock: "00:00", want: 0, wantOK: true},
		{name: "end of day", clock: "23:59", want: 1439, wantOK: true},
		{name: "single digit hour", clock: "9:05", want: 545, wantOK: true},
		{name: "empty", clock: "", wantOK: false},
		{name: "no separator", clock: "0900", wantOK: false},
		{name: "hour out of range", clock: "24:00", wantOK: false},
		{name: "minute out of range", clock: "12:60", wantOK: false},
		{name: "not numeric", clock: "ab:cd", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseClock(tc.clock)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "00:05", FormatClock(5))
	assert.Equal(t, "23:59", FormatClock(1439))
	assert.Equal(t, "00:00", FormatClock(-10))
	assert.Equal(t, "00:30", FormatClock(1470), "values wrap past midnight")
}

func TestFormatTimeDisplay(t *testing.T) {
	assert.Equal(t, "09:00 AM", FormatTimeDisplay("09:00"))
	assert.Equal(t, "01:05 PM", FormatTimeDisplay("13:05"))
	assert.Equal(t, "12:00 PM", FormatTimeDisplay("12:00"))
	assert.Equal(t, "12:15 AM", FormatTimeDisplay("00:15"))
	assert.Equal(t, "TBA", FormatTimeDisplay(""))
	assert.Equal(t, "TBA", FormatTimeDisplay("25:00"))
}

func TestParseDays(t *testing.T) {
	cases := []struct {
		name string
		days string
		want []string
	}{
		{name: "mwf", days: "MWF", want: []string{"M", "W", "F"}},
		{name: "tth", days: "TTH", want: []string{"T", "TH"}},
		{name: "thursday alone", days: "TH", want: []string{"TH"}},
		{name: "weekend tokens", days: "SATSUN", want: []string{"SAT", "SUN"}},
		{name: "monday saturday", days: "MSAT", want: []string{"M", "SAT"}},
		{name: "lower case", days: "mwf", want: []string{"M", "W", "F"}},
		{name: "duplicates removed", days: "MM", want: []string{"M"}},
		{name: "unknown skipped", days: "MXF", want: []string{"M", "F"}},
		{name: "empty", days: "", want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDays(tc.days))
		})
	}
}

func TestDaysIntersect(t *testing.T) {
	assert.True(t, DaysIntersect("MWF", "WF"))
	assert.True(t, DaysIntersect("TTH", "TH"))
	assert.False(t, DaysIntersect("MWF", "TTH"))
	assert.False(t, DaysIntersect("", "MWF"))
	assert.False(t, DaysIntersect("MWF", ""))
}

func TestFormatDaysDisplay(t *testing.T) {
	assert.Equal(t, "Monday, Wednesday, Friday", FormatDaysDisplay("MWF"))
	assert.Equal(t, "Tuesday, Thursday", FormatDaysDisplay("TTH"))
	assert.Equal(t, "TBA", FormatDaysDisplay(""))
}

func TestTimeslotsOverlap(t *testing.T) {
	slot := func(start, end string) Timeslot {
		return Timeslot{StartTime: start, EndTime: end}
	}

	assert.True(t, TimeslotsOverlap(slot("09:00", "10:15"), slot("10:00", "11:15")))
	assert.True(t, TimeslotsOverlap(slot("09:00", "12:00"), slot("10:00", "10:30")))
	assert.False(t, TimeslotsOverlap(slot("09:00", "10:15"), slot("10:15", "11:30")), "touching endpoints do not conflict")
	assert.False(t, TimeslotsOverlap(slot("09:00", "10:15"), slot("13:00", "14:15")))
	assert.False(t, TimeslotsOverlap(slot("", "10:15"), slot("09:00", "10:15")))
	assert.False(t, TimeslotsOverlap(slot("09:00", "bad"), slot("09:00", "10:15")))
}

func TestTimeBlockOf(t *testing.T) {
	assert.Equal(t, BlockEarlyMorning, TimeBlockOf(8*60))
	assert.Equal(t, BlockMorning, TimeBlockOf(9*60))
	assert.Equal(t, BlockMidday, TimeBlockOf(12*60+30))
	assert.Equal(t, BlockAfternoon, TimeBlockOf(15*60))
	assert.Equal(t, BlockEvening, TimeBlockOf(19*60))
	assert.Equal(t, BlockLateNight, TimeBlockOf(22*60))
	assert.Equal(t, BlockOther, TimeBlockOf(3*60))
}
