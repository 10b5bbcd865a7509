package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "Booking 1", "Cab 2:", "Car #3"
	enumerationRe = regexp.MustCompile(`(?i)\b(booking|cab|car|vehicle)\s*#?\s*(\d+)\b`)
	// "2 drops", "three cars"
	countedUnitsRe = regexp.MustCompile(`(?i)\b(\d+|two|three|four|five)\s+(drops?|cars?|cabs?|vehicles?|bookings?)\b`)
	// day-scoped distinct services across a range
	perDayServiceRe = regexp.MustCompile(`(?i)\b(only|will be|rest)\b.*\b(airport transfer|local use|disposal|drop)\b`)
	alternateDaysRe = regexp.MustCompile(`(?i)\balternate days?\b`)
	dateMentionRe   = regexp.MustCompile(`\b\d{1,2}(st|nd|rd|th)?[\s/-](jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec|\d{1,2})`)
)

var wordNumbers = map[string]int{"two": 2, "three": 3, "four": 4, "five": 5}

// Heuristics is the deterministic, fully offline record-count estimate for
// narrative text. It never fails: an undeterminable count degrades to 1.
func Heuristics(content string) (count int, reason string) {
	lower := strings.ToLower(content)

	// Explicit enumeration wins: the highest ordinal is the count.
	maxOrdinal := 0
	for _, m := range enumerationRe.FindAllStringSubmatch(content, -1) {
		if n, err := strconv.Atoi(m[2]); err == nil && n > maxOrdinal {
			maxOrdinal = n
		}
	}
	if maxOrdinal >= 2 {
		return maxOrdinal, fmt.Sprintf("explicit enumeration up to %d", maxOrdinal)
	}

	// Counted units: "2 drops", "three cars".
	for _, m := range countedUnitsRe.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = wordNumbers[strings.ToLower(m[1])]
		}
		if n >= 2 {
			return n, fmt.Sprintf("counted units: %s %s", m[1], m[2])
		}
	}

	// A multi-day range where individual days carry distinct service types
	// splits one record per mentioned date.
	if perDayServiceRe.MatchString(lower) {
		if dates := len(dateMentionRe.FindAllString(lower, -1)); dates >= 2 {
			return dates, fmt.Sprintf("%d dates with per-day distinct services", dates)
		}
	}

	if alternateDaysRe.MatchString(lower) {
		if dates := len(dateMentionRe.FindAllString(lower, -1)); dates >= 2 {
			return dates, "alternate-day usage"
		}
		return 2, "alternate-day usage, dates unlisted"
	}

	return 1, "no multi-record cues"
}
