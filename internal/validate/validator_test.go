package validate

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetdesk/internal/domain"
)

// fullRecord builds a record that passes every check.
func fullRecord(confidence float64) *domain.BookingRecord {
	return &domain.BookingRecord{
		ID:    uuid.New(),
		Index: 0,
		Fields: map[string]string{
			domain.FieldCustomer:         "Medtronic India",
			domain.FieldBookerName:       "Priya Nair",
			domain.FieldBookerPhone:      "9876543210",
			domain.FieldBookerEmail:      "priya.nair@medtronic.com",
			domain.FieldPassengerName:    "Rajesh Kumar",
			domain.FieldPassengerPhone:   "9811122233",
			domain.FieldPassengerEmail:   "rajesh.k@medtronic.com",
			domain.FieldFromLocation:     "Mumbai",
			domain.FieldToLocation:       "Mumbai",
			domain.FieldVehicleGroup:     "Swift Dzire",
			domain.FieldDutyType:         "G2G-04HR 40KMS",
			domain.FieldStartDate:        "2026-09-02",
			domain.FieldEndDate:          "2026-09-02",
			domain.FieldReportingTime:    "09:00",
			domain.FieldReportingAddress: "Andheri East",
			domain.FieldDropAddress:      "Airport T2",
			domain.FieldFlightTrain:      "6E 5312",
			domain.FieldDispatchCenter:   "Mumbai Central Dispatch",
			domain.FieldRemarks:          "NA",
			domain.FieldLabels:           "NA",
		},
		Confidence: confidence,
	}
}

func TestValidate_AutoAccept(t *testing.T) {
	v := New(nil)
	report := v.Validate(Input{Record: fullRecord(0.95)})

	assert.Equal(t, 1.0, report.CompletenessScore)
	assert.Equal(t, 1.0, report.FormatScore)
	assert.Equal(t, 1.0, report.BusinessRuleScore)
	assert.GreaterOrEqual(t, report.OverallScore, 0.9)
	assert.Equal(t, domain.RecommendAccept, report.Recommendation)
	assert.Empty(t, report.Flags)
}

func TestValidate_MidConfidenceNeedsReview(t *testing.T) {
	v := New(nil)
	report := v.Validate(Input{Record: fullRecord(0.5)})

	assert.GreaterOrEqual(t, report.OverallScore, 0.7)
	assert.Less(t, report.OverallScore, 0.9)
	assert.Equal(t, domain.RecommendReview, report.Recommendation)
}

func TestValidate_MissingCriticalFields(t *testing.T) {
	v := New(nil)
	rec := fullRecord(0.9)
	rec.Fields[domain.FieldPassengerName] = "NA"
	rec.Fields[domain.FieldReportingTime] = ""

	report := v.Validate(Input{Record: rec})

	assert.Less(t, report.CompletenessScore, 1.0)
	assert.Contains(t, report.Flags, "missing critical field: passenger_name")
	assert.Contains(t, report.Flags, "missing critical field: reporting_time")
}

func TestValidate_FormatViolations(t *testing.T) {
	v := New(nil)
	rec := fullRecord(0.9)
	rec.Fields[domain.FieldPassengerPhone] = "12345"
	rec.Fields[domain.FieldReportingTime] = "09:10"
	rec.Fields[domain.FieldStartDate] = "2nd Sept"
	rec.Fields[domain.FieldDutyType] = "G2G-Full Day"

	report := v.Validate(Input{Record: rec})

	assert.Less(t, report.FormatScore, 1.0)
	assert.NotEmpty(t, report.Flags)
}

func TestValidate_DutyRouteInconsistency(t *testing.T) {
	v := New(nil)
	rec := fullRecord(0.95)
	// Outstation code but both ends in the same city.
	rec.Fields[domain.FieldDutyType] = "G2G-Outstation 300KMS"

	report := v.Validate(Input{Record: rec})

	assert.Less(t, report.BusinessRuleScore, 1.0)
	found := false
	for _, f := range report.Flags {
		if strings.Contains(f, "inconsistent with route") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CollapsedRoundTripNotFlagged(t *testing.T) {
	v := New(nil)
	rec := fullRecord(0.95)
	// Same-day return: both ends collapsed to the base city, outstation duty
	// kept, marker preserved in remarks.
	rec.Fields[domain.FieldDutyType] = "G2G-Outstation 300KMS"
	rec.Fields[domain.FieldRemarks] = "Round trip via Aurangabad, same day return"

	report := v.Validate(Input{Record: rec})

	assert.Equal(t, 1.0, report.BusinessRuleScore)
	for _, f := range report.Flags {
		assert.NotContains(t, f, "inconsistent with route")
	}
}

func TestValidate_ReversedDates(t *testing.T) {
	v := New(nil)
	rec := fullRecord(0.95)
	rec.Fields[domain.FieldStartDate] = "2026-09-05"
	rec.Fields[domain.FieldEndDate] = "2026-09-02"

	report := v.Validate(Input{Record: rec})
	assert.Less(t, report.BusinessRuleScore, 1.0)
}

func TestValidate_DegradedNeverPassesReview(t *testing.T) {
	v := New(nil)
	report := v.Validate(Input{Record: fullRecord(0.95), Degraded: true})

	assert.Less(t, report.OverallScore, 0.7)
	assert.Equal(t, domain.RecommendManualCheck, report.Recommendation)
	assert.Contains(t, report.Flags, "extraction ran in degraded mode")
}

func TestValidate_MixedInputNeverPassesReview(t *testing.T) {
	v := New(nil)
	report := v.Validate(Input{Record: fullRecord(0.95), Mixed: true})

	assert.Less(t, report.OverallScore, 0.7)
	assert.Equal(t, domain.RecommendManualCheck, report.Recommendation)
	assert.Contains(t, report.Flags, "mixed tabular and narrative input")
}

func TestValidate_ConflictsAreFlagged(t *testing.T) {
	v := New(nil)
	report := v.Validate(Input{
		Record:    fullRecord(0.95),
		Conflicts: []string{"customer: kept \"TCS\", duty_vehicle proposed \"Wipro\""},
	})

	require.Len(t, report.Flags, 1)
	assert.Contains(t, report.Flags[0], "stage conflict")
}

func TestValidate_NullFilledRecordIsManualCheck(t *testing.T) {
	v := New(nil)
	rec := &domain.BookingRecord{
		ID:     uuid.New(),
		Fields: map[string]string{},
	}
	report := v.Validate(Input{Record: rec})

	assert.Equal(t, domain.RecommendManualCheck, report.Recommendation)
	assert.Zero(t, report.CompletenessScore)
}
