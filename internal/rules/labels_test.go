package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetdesk/internal/domain"
)

func TestLabels_LadyGuest(t *testing.T) {
	labels := Labels("Mrs. Kavita Rao", "pickup at 9am", true)
	assert.Equal(t, []string{domain.LabelLadyGuest}, labels)

	labels = Labels("Ms Anita Desai", "", true)
	assert.Equal(t, []string{domain.LabelLadyGuest}, labels)

	labels = Labels("Smt. Lakshmi Menon", "", false)
	assert.Equal(t, []string{domain.LabelLadyGuest}, labels)

	// No honorific, no label; never inferred from the name itself.
	assert.Empty(t, Labels("Kavita Rao", "pickup at 9am", true))
	// "Mr" must not trip the female honorific match.
	assert.Empty(t, Labels("Mr. Arjun Mehta", "pickup", true))
}

func TestLabels_VIP_SingleRecord(t *testing.T) {
	labels := Labels("Arjun Mehta", "VIP guest, please ensure premium service", true)
	assert.Equal(t, []string{domain.LabelVIP}, labels)

	// Word-bounded: "vipin" is a name, not a designation.
	assert.Empty(t, Labels("Vipin Sharma", "pickup for Vipin Sharma at 10", true))
}

func TestLabels_VIP_MultiRecord_BoundToTraveler(t *testing.T) {
	text := "Cab 1: Arjun Mehta (VIP) from airport.\nCab 2: Sunil Kumar, regular pickup."

	assert.Equal(t, []string{domain.LabelVIP}, Labels("Arjun Mehta", text, false))
	assert.Empty(t, Labels("Sunil Kumar", text, false))
}

func TestLabels_Both(t *testing.T) {
	labels := Labels("Mrs. Kavita Rao", "VIP movement, handle with care", true)
	assert.Equal(t, []string{domain.LabelLadyGuest, domain.LabelVIP}, labels)
}
