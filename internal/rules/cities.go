package rules

import "strings"

// CanonicalCity maps a free-text locality to its parent city. Unresolved
// names pass through unchanged; full addresses are never fed here.
func (t *Tables) CanonicalCity(name string) string {
	key := NormalizeKey(name)
	if key == "" {
		return name
	}
	if city, ok := t.Cities[key]; ok {
		return city
	}
	// A locality mention embedded in a longer string still resolves
	// ("Mumbai Sahar" -> Mumbai). Longest alias wins.
	best := ""
	for alias, city := range t.Cities {
		if strings.Contains(key, alias) && len(alias) > len(best) {
			best = alias
			name = city
		}
	}
	if best != "" {
		return name
	}
	return strings.TrimSpace(name)
}

// DispatchCenter returns the dispatch center for a canonical origin city.
func (t *Tables) DispatchCenter(city string) string {
	key := NormalizeKey(city)
	for alias, center := range t.Dispatch {
		if key == alias || strings.Contains(key, alias) {
			return center
		}
	}
	return DefaultDispatch
}

// roundTripCues signal a same-day return in duty text.
var roundTripCues = []string{
	"same day back",
	"same-day back",
	"same day return",
	"and return",
	"and back",
	"round trip",
	"round-trip",
	"return journey",
	"back to origin",
}

// IsRoundTrip reports whether duty text signals a same-day return.
func IsRoundTrip(dutyText string) bool {
	s := strings.ToLower(dutyText)
	for _, cue := range roundTripCues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}
