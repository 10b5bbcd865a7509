// Package classify decides how many booking records a submission holds and
// how complex the extraction will be. Tabular inputs defer to the layout
// analyzer; narrative inputs are classified semantically with a fully
// offline deterministic fallback.
package classify

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
)

// Classifier reconciles the generative and deterministic strategies.
type Classifier struct {
	extractor port.FieldExtractor // nil means offline mode
}

// New creates a Classifier. A nil extractor degrades to the deterministic
// strategy only.
func New(extractor port.FieldExtractor) *Classifier {
	return &Classifier{extractor: extractor}
}

// Classify decides record count and complexity. When a LayoutDescriptor
// exists its record count is authoritative and is never reconciled against
// the semantic estimate; a table embedded in multi-record narrative is
// flagged as mixed input instead of guessed at.
func (c *Classifier) Classify(ctx context.Context, input *domain.RawInput, layout *domain.LayoutDescriptor) domain.Classification {
	if layout != nil {
		return c.fromLayout(input, layout)
	}
	return c.fromNarrative(ctx, input.Content)
}

func (c *Classifier) fromLayout(input *domain.RawInput, layout *domain.LayoutDescriptor) domain.Classification {
	count := layout.RecordCount
	if count < 1 {
		count = 1
	}
	cls := domain.Classification{
		IsMultiple:     count > 1,
		EstimatedCount: count,
		Complexity:     complexityFor(count),
		Reasoning:      fmt.Sprintf("layout analysis: %s grid with %d record(s)", layout.Type, count),
		Confidence:     layoutConfidence(layout),
		LayoutDerived:  true,
	}

	// Narrative text alongside the grid that itself reads as multi-record is
	// the unresolved mixed case; flag it rather than pick a winner.
	if narrative := strings.TrimSpace(input.Content); narrative != "" {
		if est, _ := Heuristics(narrative); est > 1 && est != count {
			cls.MixedInput = true
			cls.Confidence = min(cls.Confidence, 0.5)
			cls.Reasoning += fmt.Sprintf("; narrative suggests %d, table is authoritative", est)
		}
	}
	return cls
}

func (c *Classifier) fromNarrative(ctx context.Context, content string) domain.Classification {
	if c.extractor != nil {
		if cls, ok := c.generative(ctx, content); ok {
			return cls
		}
	}

	est, reason := Heuristics(content)
	confidence := 0.4
	if est == 1 {
		// Undeterminable counts fail closed to one record, marked low.
		confidence = 0.35
	}
	return domain.Classification{
		IsMultiple:     est > 1,
		EstimatedCount: est,
		Complexity:     complexityFor(est),
		Reasoning:      "deterministic fallback: " + reason,
		Confidence:     confidence,
	}
}

const classifyInstructions = `You are a car rental booking classifier. Decide whether this request needs ONE booking record or SEVERAL.

MULTIPLE bookings when: two or more drops in the same day; full-day usage on alternate (non-consecutive) days; vehicle type changes between days; explicit numbering ("Booking 1", "Cab 2"); different passengers on different days; mixed service types across days of a multi-day range.
SINGLE booking when: consecutive multi-day usage of one vehicle; a single drop or transfer; a round trip.`

func (c *Classifier) generative(ctx context.Context, content string) (domain.Classification, bool) {
	out, err := c.extractor.Extract(ctx, port.ExtractInput{
		Instructions: classifyInstructions + `
Fields to return: is_multiple ("true"/"false"), booking_count (integer), complexity ("simple"/"medium"/"complex").`,
		Slice: content,
	})
	if err != nil {
		log.Printf("classify.Classifier: generative classification failed: %v", err)
		return domain.Classification{}, false
	}

	count, err := strconv.Atoi(strings.TrimSpace(out.Fields["booking_count"]))
	if err != nil || count < 1 {
		log.Printf("classify.Classifier: unusable booking_count %q, falling back", out.Fields["booking_count"])
		return domain.Classification{}, false
	}

	confidence := 0.0
	for _, c := range out.Confidences {
		confidence += c
	}
	if len(out.Confidences) > 0 {
		confidence /= float64(len(out.Confidences))
	}
	if confidence < 0.5 {
		// Low-confidence generative answers defer to the deterministic path.
		return domain.Classification{}, false
	}

	return domain.Classification{
		IsMultiple:     count > 1,
		EstimatedCount: count,
		Complexity:     parseComplexity(out.Fields["complexity"], count),
		Reasoning:      out.Reasoning,
		Confidence:     confidence,
	}, true
}

func parseComplexity(s string, count int) domain.Complexity {
	switch domain.Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case domain.ComplexitySimple:
		return domain.ComplexitySimple
	case domain.ComplexityMedium:
		return domain.ComplexityMedium
	case domain.ComplexityComplex:
		return domain.ComplexityComplex
	}
	return complexityFor(count)
}

func complexityFor(count int) domain.Complexity {
	switch {
	case count <= 1:
		return domain.ComplexitySimple
	case count <= 3:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityComplex
	}
}

func layoutConfidence(layout *domain.LayoutDescriptor) float64 {
	if layout.Type == domain.LayoutUnknown {
		return 0.5
	}
	top := layout.HorizontalScore
	if layout.VerticalScore > top {
		top = layout.VerticalScore
	}
	switch {
	case top >= 6:
		return 0.9
	case top >= 3:
		return 0.75
	default:
		// Ambiguous layout: defaulted, low confidence, never aborted.
		return 0.5
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
