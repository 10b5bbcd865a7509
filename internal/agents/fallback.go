package agents

import (
	"regexp"
	"strings"
)

// Label precedence for role disambiguation. A line or cell labeled with a
// booker term is invisible to the traveler stage and vice versa; precedence
// is fixed, not inferred per submission.
var (
	bookerLabels = []string{
		"booked by", "booker", "requested by", "requestor", "requester",
		"arranged by", "travel desk", "coordinator", "booking contact",
	}
	travelerLabels = []string{
		"passenger", "traveller", "traveler", "guest", "pax", "employee",
	}
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+91[\s\-]?)?[6-9]\d{4}[\s\-]?\d{5}`)
	dateRe  = regexp.MustCompile(`\b\d{1,2}[\-/][A-Za-z0-9]{1,3}[\-/]\d{2,4}\b|\b\d{1,2}(?:st|nd|rd|th)?\s+(?i:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s*\d{0,4}\b`)
	timeRe  = regexp.MustCompile(`\b\d{1,2}[:.]\d{2}\s*(?i:am|pm|hrs)?\b|\b\d{1,2}\s*(?i:am|pm)\b`)
	// Airline/train designators: "6E 5312", "AI-804", "12951".
	flightRe  = regexp.MustCompile(`\b([A-Z]{2}|[A-Z]\d|\d[A-Z])[\s\-]?\d{2,4}\b|\b\d{5}\b`)
	companyRe = regexp.MustCompile(`(?i)(?:company|client|organization|organisation|corporate|customer)\s*[:\-]\s*(.+)`)
)

func matchesLabel(label string, terms []string) bool {
	l := strings.ToLower(label)
	for _, t := range terms {
		if strings.Contains(l, t) {
			return true
		}
	}
	return false
}

// pairValue returns the first pair whose label contains one of terms and
// whose label does not match any of the excluded role terms.
func pairValue(s Slice, terms, excluded []string) string {
	for _, p := range s.Pairs {
		if matchesLabel(p.Label, excluded) {
			continue
		}
		if matchesLabel(p.Label, terms) && strings.TrimSpace(p.Value) != "" {
			return strings.TrimSpace(p.Value)
		}
	}
	return ""
}

// labeledLine scans narrative text for "Label: value" lines.
func labeledLine(text string, terms, excluded []string) string {
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if matchesLabel(label, excluded) {
			continue
		}
		if matchesLabel(label, terms) && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// roleScoped finds a labeled value in the slice, honoring the fixed label
// precedence: pairs first, then narrative lines.
func roleScoped(s Slice, terms, excluded []string) string {
	if v := pairValue(s, terms, excluded); v != "" {
		return v
	}
	return labeledLine(s.Text, terms, excluded)
}

// firstMatch returns the first regexp match in the slice content that does
// not sit on a line whose label matches the excluded role terms.
func firstMatch(s Slice, re *regexp.Regexp, excluded []string) string {
	for _, p := range s.Pairs {
		if matchesLabel(p.Label, excluded) {
			continue
		}
		if m := re.FindString(p.Value); m != "" {
			return strings.TrimSpace(m)
		}
	}
	for _, line := range strings.Split(s.Text, "\n") {
		if label, _, ok := strings.Cut(line, ":"); ok && matchesLabel(label, excluded) {
			continue
		}
		if m := re.FindString(line); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}
