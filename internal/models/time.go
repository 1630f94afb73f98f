package models

import (
	"strconv"
	"strings"
)

// Canonical day tokens used by day-sets like "MWF" and "TTH".
const (
	DayMonday    = "M"
	DayTuesday   = "T"
	DayWednesday = "W"
	DayThursday  = "TH"
	DayFriday    = "F"
	DaySaturday  = "SAT"
	DaySunday    = "SUN"
)

// Named time-of-day blocks keyed by timeslot start time.
const (
	BlockEarlyMorning = "early_morning"
	BlockMorning      = "morning"
	BlockMidday       = "midday"
	BlockAfternoon    = "afternoon"
	BlockEvening      = "evening"
	BlockLateNight    = "late_night"
	BlockOther        = "other"
)

// AllDays lists day tokens in week order.
var AllDays = []string{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}

// Weekdays lists the teaching days Monday through Friday.
var Weekdays = []string{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday}

var dayNames = map[string]string{
	DayMonday:    "Monday",
	DayTuesday:   "Tuesday",
	DayWednesday: "Wednesday",
	DayThursday:  "Thursday",
	DayFriday:    "Friday",
	DaySaturday:  "Saturday",
	DaySunday:    "Sunday",
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// The second return value is false for empty or malformed input.
func ParseClock(clock string) (int, bool) {
	if clock == "" {
		return 0, false
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return 0, false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}

	return hour*60 + minute, true
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" string.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	minutes %= 24 * 60
	hour := minutes / 60
	minute := minutes % 60

	var b strings.Builder
	if hour < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(hour))
	b.WriteByte(':')
	if minute < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(minute))
	return b.String()
}

// FormatTimeDisplay renders a clock string in 12-hour display form, or "TBA"
// when the value is missing or malformed.
func FormatTimeDisplay(clock string) string {
	minutes, ok := ParseClock(clock)
	if !ok {
		return "TBA"
	}

	hour := minutes / 60
	minute := minutes % 60
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}

	var b strings.Builder
	if display < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(display))
	b.WriteByte(':')
	if minute < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(minute))
	b.WriteByte(' ')
	b.WriteString(suffix)
	return b.String()
}

// ParseDays tokenizes a compact day-set like "MWF", "TTH" or "MSAT" into
// canonical day tokens, longest token first so "TH" is not read as "T","H".
// Unknown characters are skipped and duplicates removed.
func ParseDays(days string) []string {
	upper := strings.ToUpper(strings.TrimSpace(days))
	tokens := make([]string, 0, 5)
	seen := make(map[string]bool, 5)

	for i := 0; i < len(upper); {
		matched := ""
		switch {
		case strings.HasPrefix(upper[i:], DaySaturday):
			matched = DaySaturday
		case strings.HasPrefix(upper[i:], DaySunday):
			matched = DaySunday
		case strings.HasPrefix(upper[i:], DayThursday):
			matched = DayThursday
		case upper[i] == 'M':
			matched = DayMonday
		case upper[i] == 'T':
			matched = DayTuesday
		case upper[i] == 'W':
			matched = DayWednesday
		case upper[i] == 'F':
			matched = DayFriday
		}

		if matched == "" {
			i++
			continue
		}
		if !seen[matched] {
			seen[matched] = true
			tokens = append(tokens, matched)
		}
		i += len(matched)
	}

	return tokens
}

// DaysIntersect reports whether two day-sets share at least one day.
func DaysIntersect(a, b string) bool {
	left := ParseDays(a)
	if len(left) == 0 {
		return false
	}
	set := make(map[string]bool, len(left))
	for _, day := range left {
		set[day] = true
	}
	for _, day := range ParseDays(b) {
		if set[day] {
			return true
		}
	}
	return false
}

// FormatDaysDisplay expands a day-set into full day names, or "TBA" when empty.
func FormatDaysDisplay(days string) string {
	tokens := ParseDays(days)
	if len(tokens) == 0 {
		return "TBA"
	}
	names := make([]string, 0, len(tokens))
	for _, token := range tokens {
		names = append(names, dayNames[token])
	}
	return strings.Join(names, ", ")
}

// TimeslotsOverlap reports half-open interval overlap: two slots conflict when
// start1 < end2 and start2 < end1, so touching endpoints do not conflict.
// Slots with malformed times never overlap anything.
func TimeslotsOverlap(a, b Timeslot) bool {
	aStart, ok := a.StartMinutes()
	if !ok {
		return false
	}
	aEnd, ok := a.EndMinutes()
	if !ok {
		return false
	}
	bStart, ok := b.StartMinutes()
	if !ok {
		return false
	}
	bEnd, ok := b.EndMinutes()
	if !ok {
		return false
	}

	return aStart < bEnd && bStart < aEnd
}

// TimeBlockOf buckets a start time (minutes since midnight) into a named
// time-of-day block. Starts outside all ranges fall into BlockOther.
func TimeBlockOf(startMinutes int) string {
	switch {
	case startMinutes >= 6*60 && startMinutes < 9*60:
		return BlockEarlyMorning
	case startMinutes >= 9*60 && startMinutes < 12*60:
		return BlockMorning
	case startMinutes >= 12*60 && startMinutes < 15*60:
		return BlockMidday
	case startMinutes >= 15*60 && startMinutes < 18*60:
		return BlockAfternoon
	case startMinutes >= 18*60 && startMinutes < 22*60:
		return BlockEvening
	case startMinutes >= 22*60 && startMinutes < 24*60:
		return BlockLateNight
	default:
		return BlockOther
	}
}
