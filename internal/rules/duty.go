package rules

import (
	"fmt"
	"strings"

	"fleetdesk/internal/domain"
)

var (
	transferCues = []string{
		"drop", "airport transfer", "airport pickup", "pickup from airport",
		"drop to airport", "railway station", "station transfer", "transfer",
		"one way", "one-way", "apt drop", "4 hour", "4hr", "4/40", "40km",
	}
	disposalCues = []string{
		"disposal", "at disposal", "local use", "city use", "whole day",
		"full day", "as per guest", "visit", "8 hour", "8hr", "8/80", "80km",
	}
	outstationCues = []string{
		"outstation", "out station", "intercity", "between cities",
		"round trip", "travel to", "250km", "300km",
	}
)

// DutyInput carries the facts duty derivation depends on. Organization and
// cities come from earlier agent stages; the ordering of the chain exists so
// this data is already committed when duty runs.
type DutyInput struct {
	Organization  string
	BookerEmail   string
	TravelerEmail string
	DutyText      string
	FromCity      string
	ToCity        string
}

// freeMailDomains covers personal mailboxes; everything else counts as a
// corporate domain for category detection.
var freeMailDomains = []string{"gmail.", "yahoo.", "hotmail.", "outlook.", "rediffmail."}

// Category resolves corporate (G2G) vs individual (P2P). A registry match on the
// organization wins; otherwise a non-free email domain on either party
// implies corporate.
func (t *Tables) Category(in DutyInput) domain.CorporateCategory {
	org := NormalizeKey(in.Organization)
	for keyword := range t.Corporates {
		if org != "" && strings.Contains(org, keyword) {
			return domain.CategoryCorporate
		}
	}
	for _, email := range []string{in.BookerEmail, in.TravelerEmail} {
		if corporateEmail(email) {
			return domain.CategoryCorporate
		}
	}
	return domain.CategoryIndividual
}

func corporateEmail(email string) bool {
	email = NormalizeKey(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	dom := email[at+1:]
	for _, free := range freeMailDomains {
		if strings.HasPrefix(dom, free) {
			return false
		}
	}
	return dom != ""
}

// Package resolves the service-package tier from duty-text cues and the
// origin/destination pair. Distinct cities force outstation regardless of
// wording; outstation then branches on the destination distance band.
func (t *Tables) Package(in DutyInput) domain.DutyPackage {
	text := strings.ToLower(in.DutyText)

	from := NormalizeKey(t.CanonicalCity(in.FromCity))
	to := NormalizeKey(t.CanonicalCity(in.ToCity))
	if from != "" && to != "" && from != to && from != "na" && to != "na" {
		return t.outstationBand(to)
	}

	for _, cue := range outstationCues {
		if strings.Contains(text, cue) {
			// A round trip may already carry the base city in both fields, so
			// the band is judged on the visited city named in the duty text.
			dest := to
			if dest == "" || dest == from {
				dest = t.visitedCity(text)
			}
			return t.outstationBand(dest)
		}
	}
	for _, cue := range transferCues {
		if strings.Contains(text, cue) {
			return domain.PackageTransfer
		}
	}
	for _, cue := range disposalCues {
		if strings.Contains(text, cue) {
			return domain.PackageDisposal
		}
	}
	// Nothing specified reads as local disposal.
	return domain.PackageDisposal
}

func (t *Tables) outstationBand(destCity string) domain.DutyPackage {
	if t.MajorCities[NormalizeKey(destCity)] {
		return domain.PackageOutstationNear
	}
	return domain.PackageOutstationFar
}

// visitedCity pulls the first known city mentioned in duty text, for round
// trips whose destination already collapsed to the base city.
func (t *Tables) visitedCity(text string) string {
	for alias, city := range t.Cities {
		if strings.Contains(text, alias) {
			return city
		}
	}
	return ""
}

// DutyType derives the full duty-type code {Category}-{Package}.
func (t *Tables) DutyType(in DutyInput) string {
	return fmt.Sprintf("%s-%s", t.Category(in), t.Package(in))
}
