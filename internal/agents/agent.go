// Package agents defines the ordered field-extraction stages. Each agent
// owns a disjoint set of canonical fields, consumes the record slice plus
// the context accumulated by earlier stages, and returns values without side
// effects; the orchestrator folds results into the accumulator.
package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
)

// Slice is one record's share of the submission: a sub-grid flattened to
// label/value pairs for tabular input, or the full text plus record index
// for narrative input.
type Slice struct {
	Text   string
	Pairs  []Pair
	Index  int
	Total  int
	Sender string
}

// Pair is one label/value row of a tabular slice.
type Pair struct {
	Label string
	Value string
}

// Content renders the slice for a prompt or fallback scan.
func (s Slice) Content() string {
	if len(s.Pairs) == 0 {
		if s.Total > 1 {
			return fmt.Sprintf("Booking %d of %d.\n%s", s.Index+1, s.Total, s.Text)
		}
		return s.Text
	}
	var b strings.Builder
	for _, p := range s.Pairs {
		fmt.Fprintf(&b, "%s: %s\n", p.Label, p.Value)
	}
	return b.String()
}

// Agent is one stage of the chain.
type Agent struct {
	name         string
	stage        domain.Stage
	fields       []string
	instructions string
	fallback     func(Slice) map[string]string
}

func (a *Agent) Name() string        { return a.name }
func (a *Agent) Stage() domain.Stage { return a.stage }

// Fields lists the canonical fields this agent owns.
func (a *Agent) Fields() []string { return a.fields }

// Extract runs the generative extraction for this stage. Returned fields are
// filtered to the agent's own set so a chatty provider cannot clobber another
// stage's work.
func (a *Agent) Extract(ctx context.Context, ex port.FieldExtractor, slice Slice, accumulated map[string]string) (map[string]string, map[string]float64, error) {
	if ex == nil {
		return nil, nil, domain.ErrExtractorDown
	}
	out, err := ex.Extract(ctx, port.ExtractInput{
		Instructions: a.instructions,
		Slice:        slice.Content(),
		Context:      accumulated,
	})
	if err != nil {
		return nil, nil, err
	}

	fields := make(map[string]string, len(a.fields))
	confs := make(map[string]float64, len(a.fields))
	for _, name := range a.fields {
		if v, ok := out.Fields[name]; ok && strings.TrimSpace(v) != "" {
			fields[name] = strings.TrimSpace(v)
			confs[name] = out.Confidences[name]
		}
	}
	return fields, confs, nil
}

// Fallback is the deterministic keyword extraction scoped to this agent's
// fields, used after retries are exhausted. Never errors; missing fields are
// simply absent and the assembler null-fills them.
func (a *Agent) Fallback(slice Slice) map[string]string {
	if a.fallback == nil {
		return nil
	}
	out := a.fallback(slice)
	for name := range out {
		if !a.owns(name) {
			delete(out, name)
		}
	}
	return out
}

func (a *Agent) owns(field string) bool {
	for _, f := range a.fields {
		if f == field {
			return true
		}
	}
	return false
}

// fieldList renders the agent's field names for its prompt.
func fieldList(fields []string) string {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
