package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
	"fleetdesk/mocks"
)

func TestClassify_LayoutIsAuthoritative(t *testing.T) {
	c := New(nil)
	layout := &domain.LayoutDescriptor{
		Type:          domain.LayoutVertical,
		RecordCount:   3,
		VerticalScore: 8,
	}

	cls := c.Classify(context.Background(), &domain.RawInput{}, layout)

	assert.True(t, cls.IsMultiple)
	assert.Equal(t, 3, cls.EstimatedCount)
	assert.True(t, cls.LayoutDerived)
	assert.False(t, cls.MixedInput)
	assert.Equal(t, domain.ComplexityMedium, cls.Complexity)
	assert.InDelta(t, 0.9, cls.Confidence, 0.001)
}

func TestClassify_MixedInputFlagged(t *testing.T) {
	c := New(nil)
	layout := &domain.LayoutDescriptor{
		Type:          domain.LayoutVertical,
		RecordCount:   2,
		VerticalScore: 8,
	}
	input := &domain.RawInput{
		Content: "Also need cab 1, cab 2 and cab 3 for the conference",
	}

	cls := c.Classify(context.Background(), input, layout)

	assert.Equal(t, 2, cls.EstimatedCount, "table count stays authoritative")
	assert.True(t, cls.MixedInput)
	assert.LessOrEqual(t, cls.Confidence, 0.5)
}

func TestClassify_NarrativeOffline(t *testing.T) {
	c := New(nil)

	cls := c.Classify(context.Background(), &domain.RawInput{
		Content: "Need a cab from Andheri to BKC tomorrow at 9am",
	}, nil)

	assert.False(t, cls.IsMultiple)
	assert.Equal(t, 1, cls.EstimatedCount)
	assert.Equal(t, domain.ComplexitySimple, cls.Complexity)
	assert.InDelta(t, 0.35, cls.Confidence, 0.001)
}

func TestClassify_GenerativePath(t *testing.T) {
	ex := new(mocks.MockFieldExtractor)
	ex.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{
		Fields: map[string]string{
			"is_multiple":   "true",
			"booking_count": "2",
			"complexity":    "medium",
		},
		Confidences: map[string]float64{
			"is_multiple":   0.9,
			"booking_count": 0.9,
			"complexity":    0.9,
		},
		Reasoning: "two drops on the same day",
	}, nil)

	c := New(ex)
	cls := c.Classify(context.Background(), &domain.RawInput{
		Content: "Two drops on Friday: one to the airport, one to the hotel",
	}, nil)

	assert.True(t, cls.IsMultiple)
	assert.Equal(t, 2, cls.EstimatedCount)
	assert.Equal(t, domain.ComplexityMedium, cls.Complexity)
	assert.InDelta(t, 0.9, cls.Confidence, 0.001)
	ex.AssertExpectations(t)
}

func TestClassify_GenerativeFailureFallsBack(t *testing.T) {
	ex := new(mocks.MockFieldExtractor)
	ex.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))

	c := New(ex)
	cls := c.Classify(context.Background(), &domain.RawInput{
		Content: "Cab 1 for Rajesh, Cab 2 for Anita, Cab 3 for Vikram",
	}, nil)

	assert.Equal(t, 3, cls.EstimatedCount)
	assert.Contains(t, cls.Reasoning, "deterministic fallback")
}

func TestHeuristics(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"single transfer", "Need a drop to the airport tomorrow", 1},
		{"explicit enumeration", "Cab 1 for Rajesh. Cab 2 for Anita.", 2},
		{"counted units digits", "We need 3 cars for the offsite", 3},
		{"counted units words", "Please arrange three cabs on Monday", 3},
		{"alternate days without dates", "Full day use on alternate days next week", 2},
		{"empty", "", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Heuristics(tc.content)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, reason)
		})
	}
}
