package agents

import (
	"fmt"
	"strings"

	"fleetdesk/internal/domain"
)

// Conflict records a later stage attempting to overwrite a field an earlier
// stage already set. The first value stands; the attempt is kept so the
// validator can flag it.
type Conflict struct {
	Field    string
	Kept     string
	Rejected string
	Stage    domain.Stage
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: kept %q from earlier stage, %s proposed %q", c.Field, c.Kept, c.Stage, c.Rejected)
}

// Accumulator is the append-only field context shared across the chain.
// First write wins; repeat writes with a different value are recorded as
// conflicts rather than applied.
type Accumulator struct {
	fields    domain.FieldSet
	conflicts []Conflict
}

func NewAccumulator() *Accumulator {
	return &Accumulator{fields: make(domain.FieldSet)}
}

// Merge folds one stage's output into the context.
func (a *Accumulator) Merge(stage domain.Stage, fields map[string]string, confs map[string]float64) {
	for name, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, domain.NullMarker) {
			continue
		}
		if existing, ok := a.fields[name]; ok {
			if existing.Value != value {
				a.conflicts = append(a.conflicts, Conflict{
					Field:    name,
					Kept:     existing.Value,
					Rejected: value,
					Stage:    stage,
				})
			}
			continue
		}
		a.fields[name] = domain.FieldValue{
			Value:      value,
			Stage:      stage,
			Confidence: confs[name],
		}
	}
}

// Context renders the accumulated fields as plain strings for the next
// stage's prompt.
func (a *Accumulator) Context() map[string]string {
	out := make(map[string]string, len(a.fields))
	for name, fv := range a.fields {
		out[name] = fv.Value
	}
	return out
}

// Snapshot returns a copy of the accumulated field set.
func (a *Accumulator) Snapshot() domain.FieldSet {
	out := make(domain.FieldSet, len(a.fields))
	for name, fv := range a.fields {
		out[name] = fv
	}
	return out
}

// Conflicts lists overwrite attempts in arrival order.
func (a *Accumulator) Conflicts() []Conflict { return a.conflicts }

// Confidence averages per-field confidence across the accumulated set.
func (a *Accumulator) Confidence() float64 {
	if len(a.fields) == 0 {
		return 0
	}
	var sum float64
	for _, fv := range a.fields {
		sum += fv.Confidence
	}
	return sum / float64(len(a.fields))
}
