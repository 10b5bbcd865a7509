package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetdesk/internal/domain"
)

func TestCategory(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		name string
		in   DutyInput
		want domain.CorporateCategory
	}{
		{
			name: "registry match on organization",
			in:   DutyInput{Organization: "Accenture India"},
			want: domain.CategoryCorporate,
		},
		{
			name: "registry match is case insensitive",
			in:   DutyInput{Organization: "TCS"},
			want: domain.CategoryCorporate,
		},
		{
			name: "corporate email domain",
			in:   DutyInput{BookerEmail: "ravi.k@medtronic.com"},
			want: domain.CategoryCorporate,
		},
		{
			name: "traveler corporate email counts too",
			in:   DutyInput{TravelerEmail: "s.iyer@wipro.com"},
			want: domain.CategoryCorporate,
		},
		{
			name: "free mail only",
			in:   DutyInput{BookerEmail: "ravi.kumar@gmail.com"},
			want: domain.CategoryIndividual,
		},
		{
			name: "nothing known",
			in:   DutyInput{},
			want: domain.CategoryIndividual,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tables.Category(tc.in))
		})
	}
}

func TestPackage(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		name string
		in   DutyInput
		want domain.DutyPackage
	}{
		{
			name: "distinct cities force outstation, major destination",
			in:   DutyInput{FromCity: "Delhi", ToCity: "Mumbai"},
			want: domain.PackageOutstationNear,
		},
		{
			name: "distinct cities, minor destination",
			in:   DutyInput{FromCity: "Mumbai", ToCity: "Aurangabad"},
			want: domain.PackageOutstationFar,
		},
		{
			name: "outstation cue with collapsed cities reads visited city",
			in:   DutyInput{FromCity: "Mumbai", ToCity: "Mumbai", DutyText: "round trip to aurangabad and back"},
			want: domain.PackageOutstationFar,
		},
		{
			name: "airport drop is a transfer",
			in:   DutyInput{FromCity: "Mumbai", ToCity: "Mumbai", DutyText: "Airport drop at 6am"},
			want: domain.PackageTransfer,
		},
		{
			name: "full day at disposal",
			in:   DutyInput{FromCity: "Pune", DutyText: "full day local use"},
			want: domain.PackageDisposal,
		},
		{
			name: "nothing specified defaults to disposal",
			in:   DutyInput{FromCity: "Pune"},
			want: domain.PackageDisposal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tables.Package(tc.in))
		})
	}
}

func TestDutyType(t *testing.T) {
	tables := DefaultTables()

	got := tables.DutyType(DutyInput{
		Organization: "Infosys Limited",
		FromCity:     "Bangalore",
		DutyText:     "city use for the whole day",
	})
	assert.Equal(t, "G2G-08HR 80KMS", got)

	got = tables.DutyType(DutyInput{
		BookerEmail: "personal@gmail.com",
		FromCity:    "Mumbai",
		DutyText:    "drop to airport",
	})
	assert.Equal(t, "P2P-04HR 40KMS", got)
}
