package rules

import "strings"

// CanonicalVehicle maps a free-text vehicle mention to the fixed vehicle
// vocabulary. Unresolved or empty mentions get the system default; the
// vehicle group is never null.
func (t *Tables) CanonicalVehicle(mention string) string {
	key := NormalizeKey(mention)
	if key == "" || key == "nan" || key == "none" || key == "na" {
		return DefaultVehicle
	}
	if v, ok := t.Vehicles[key]; ok {
		return v
	}
	// Partial alias match, longest alias wins ("need an innova crysta please").
	best, mapped := "", ""
	for alias, v := range t.Vehicles {
		if strings.Contains(key, alias) && len(alias) > len(best) {
			best, mapped = alias, v
		}
	}
	if mapped != "" {
		return mapped
	}
	return DefaultVehicle
}

// KnownVehicle reports whether v is in the canonical vehicle vocabulary.
func (t *Tables) KnownVehicle(v string) bool {
	for _, canonical := range t.Vehicles {
		if canonical == v {
			return true
		}
	}
	return false
}
