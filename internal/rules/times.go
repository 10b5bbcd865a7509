package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})\s*(?i:(am|pm))?$`)

// RoundTime normalizes a clock time onto the 15-minute dispatch grid and
// returns it as 24-hour HH:MM. Cut points sit at minutes 7/8, 22/23, 37/38
// and 52/53: below the cut rounds down, at or above rounds up. 53-59 rolls
// into the next hour (23:55 wraps to 00:00). Idempotent. Unparseable input
// is returned unchanged.
func RoundTime(raw string) string {
	s := strings.TrimSpace(raw)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return raw
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return raw
	}

	meridiem := strings.ToLower(m[3])
	switch {
	case meridiem == "pm" && hour < 12:
		hour += 12
	case meridiem == "am" && hour == 12:
		hour = 0
	}
	if hour > 23 {
		return raw
	}

	rounded := roundMinute(minute)
	if rounded == 60 {
		rounded = 0
		hour = (hour + 1) % 24
	}
	return fmt.Sprintf("%02d:%02d", hour, rounded)
}

func roundMinute(minute int) int {
	switch {
	case minute <= 7:
		return 0
	case minute <= 22:
		return 15
	case minute <= 37:
		return 30
	case minute <= 52:
		return 45
	default:
		return 60
	}
}
