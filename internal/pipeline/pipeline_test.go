package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
	"fleetdesk/mocks"
)

// fullOutput is what a cooperative provider would return for a single-booking
// email, including the classification fields the classifier asks for.
func fullOutput() *port.ExtractOutput {
	fields := map[string]string{
		"booking_count": "1",
		"is_multiple":   "false",
		"complexity":    "simple",

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
	}
	confs := make(map[string]float64, len(fields))
	for name := range fields {
		confs[name] = 0.9
	}
	return &port.ExtractOutput{Fields: fields, Confidences: confs, Reasoning: "single transfer request"}
}

func TestProcess_SingleNarrativeBooking(t *testing.T) {
	ext := new(mocks.MockFieldExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(fullOutput(), nil)

	p := New(ext, nil, Options{})
	set, err := p.Process(context.Background(), &domain.RawInput{
		Content:     "Need a cab for Rajesh Kumar tomorrow morning, airport drop.",
		SenderEmail: "priya.nair@medtronic.com",
	})
	require.NoError(t, err)

	assert.False(t, set.Degraded)
	assert.False(t, set.Partial)
	assert.Equal(t, 1, set.Classification.EstimatedCount)
	require.Len(t, set.Records, 1)

	rec := set.Records[0]
	assert.Len(t, rec.Fields, len(domain.RecordColumns))
	assert.Equal(t, "Rajesh Kumar", rec.Get(domain.FieldPassengerName))
	assert.Equal(t, "G2G-04HR 40KMS", rec.Get(domain.FieldDutyType))
	assert.Equal(t, "Mumbai Central Dispatch", rec.Get(domain.FieldDispatchCenter))
	assert.InDelta(t, 0.9, rec.Confidence, 0.001)

	require.NotNil(t, rec.Validation)
	assert.Equal(t, domain.RecommendAccept, rec.Validation.Recommendation)
}

func TestProcess_ExtractorDownShipsEveryRecord(t *testing.T) {
	ext := new(mocks.MockFieldExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrExtractorDown)

	p := New(ext, nil, Options{})
	set, err := p.Process(context.Background(), &domain.RawInput{
		Grid: [][]string{
			{"S.No", "Passenger Name", "Phone", "Pickup Time", "Drop Location"},
			{"1", "Rajesh Kumar", "9876543210", "09:00", "BKC"},
			{"2", "Anita Shah", "9811122233", "14:30", "Airport T2"},
			{"3", "Vikram Singh", "9900011122", "18:00", "Powai"},
		},
	})
	require.NoError(t, err)

	assert.True(t, set.Degraded)
	require.Len(t, set.Records, 3)

	assert.Equal(t, "Rajesh Kumar", set.Records[0].Get(domain.FieldPassengerName))

	for _, rec := range set.Records {
		assert.Len(t, rec.Fields, len(domain.RecordColumns))
		require.NotNil(t, rec.Validation)
		assert.Less(t, rec.Validation.OverallScore, 0.7)
		assert.Equal(t, domain.RecommendManualCheck, rec.Validation.Recommendation)
		assert.Contains(t, rec.Validation.Flags, "extraction ran in degraded mode")
	}
}

func TestProcess_NilExtractorIsDegraded(t *testing.T) {
	p := New(nil, nil, Options{})
	set, err := p.Process(context.Background(), &domain.RawInput{
		Content: "Passenger: Anita Shah\nPhone: 9811122233\nPickup at 10am from Powai.",
	})
	require.NoError(t, err)

	assert.True(t, set.Degraded)
	require.Len(t, set.Records, 1)
	assert.Equal(t, domain.RecommendManualCheck, set.Records[0].Validation.Recommendation)
}

func TestProcess_MixedInputForcesManualCheck(t *testing.T) {
	ext := new(mocks.MockFieldExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(fullOutput(), nil)

	p := New(ext, nil, Options{})
	set, err := p.Process(context.Background(), &domain.RawInput{
		Content: "Cab 1 for Rajesh, Cab 2 for Anita and Cab 3 for Vikram as discussed.",
		Grid: [][]string{
			{"Field", "Cab 1", "Cab 2"},
			{"Passenger Name", "Rajesh Kumar", "Anita Shah"},
			{"Contact", "9876543210", "9811122233"},
			{"Pickup Time", "09:00", "14:30"},
			{"Drop Address", "BKC", "Airport T2"},
		},
	})
	require.NoError(t, err)

	assert.True(t, set.Classification.MixedInput)
	require.Len(t, set.Records, 2)
	for _, rec := range set.Records {
		require.NotNil(t, rec.Validation)
		assert.Less(t, rec.Validation.OverallScore, 0.7)
		assert.Equal(t, domain.RecommendManualCheck, rec.Validation.Recommendation)
		assert.Contains(t, rec.Validation.Flags, "mixed tabular and narrative input")
	}
}

func TestProcess_DegradedInputCapsHealthyExtraction(t *testing.T) {
	ext := new(mocks.MockFieldExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(fullOutput(), nil)

	p := New(ext, nil, Options{})
	set, err := p.Process(context.Background(), &domain.RawInput{
		Content:  "Need a cab for Rajesh Kumar tomorrow morning, airport drop.",
		Degraded: true,
	})
	require.NoError(t, err)

	assert.True(t, set.Degraded)
	require.Len(t, set.Records, 1)
	rec := set.Records[0]
	assert.Less(t, rec.Validation.OverallScore, 0.7)
	assert.Equal(t, domain.RecommendManualCheck, rec.Validation.Recommendation)
	assert.Contains(t, rec.Validation.Flags, "extraction ran in degraded mode")
}

func TestProcess_DeadlineMidSetIsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ext := new(mocks.MockFieldExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(fullOutput(), nil)

	p := New(ext, nil, Options{})
	set, err := p.Process(ctx, &domain.RawInput{
		Grid: [][]string{
			{"Field", "Cab 1", "Cab 2"},
			{"Passenger Name", "Rajesh Kumar", "Anita Shah"},
			{"Contact", "9876543210", "9811122233"},
			{"Pickup Time", "09:00", "14:30"},
			{"Drop Address", "BKC", "Airport T2"},
		},
	})
	require.NoError(t, err)

	assert.True(t, set.Partial)
	assert.Len(t, set.Records, 1)
}

func TestProcess_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(nil, nil, Options{})
	set, err := p.Process(ctx, &domain.RawInput{Content: "cab needed"})

	assert.Nil(t, set)
	assert.ErrorIs(t, err, context.Canceled)
}
