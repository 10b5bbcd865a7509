package rules

import (
	"regexp"
	"strings"

	"fleetdesk/internal/domain"
)

var femaleHonorificRe = regexp.MustCompile(`(?i)(^|\s)(ms|mrs|smt)\.?(\s|$)`)

// vipRe matches an explicit VIP designation. Word-bounded so "vipin" or
// street names never trigger it.
var vipRe = regexp.MustCompile(`(?i)\bvip\b`)

// Labels derives the categorical labels for one traveler. LadyGuest attaches
// iff the traveler name carries an explicit female honorific; VIP iff the
// source text contains an explicit VIP designation bound to this traveler
// (the traveler's name near the mention, or a single-record submission).
// Presence checks only, never inferred from tone or context.
func Labels(travelerName, sourceText string, singleRecord bool) []string {
	var labels []string

	if femaleHonorificRe.MatchString(travelerName) {
		labels = append(labels, domain.LabelLadyGuest)
	}

	if vipMentionBoundTo(travelerName, sourceText, singleRecord) {
		labels = append(labels, domain.LabelVIP)
	}
	return labels
}

func vipMentionBoundTo(travelerName, sourceText string, singleRecord bool) bool {
	if !vipRe.MatchString(sourceText) {
		return false
	}
	if singleRecord {
		return true
	}
	// Multi-record: bind the mention to this traveler by proximity. The VIP
	// designation must appear within the same line or sentence as part of the
	// traveler's name.
	surname := significantToken(travelerName)
	if surname == "" {
		return false
	}
	for _, segment := range splitSegments(sourceText) {
		lower := strings.ToLower(segment)
		if strings.Contains(lower, surname) && vipRe.MatchString(segment) {
			return true
		}
	}
	return false
}

// significantToken returns the longest name token, lowercased, skipping
// honorifics.
func significantToken(name string) string {
	best := ""
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		tok = strings.Trim(tok, ".,")
		switch tok {
		case "mr", "mrs", "ms", "smt", "shri", "dr":
			continue
		}
		if len(tok) > len(best) {
			best = tok
		}
	}
	return best
}

func splitSegments(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '.' || r == ';'
	})
}
