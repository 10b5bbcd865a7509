// Package pipeline orchestrates the full submission flow: layout analysis,
// classification, the ordered agent chain per record, rule normalization,
// validation, and record assembly.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"fleetdesk/internal/agents"
	"fleetdesk/internal/classify"
	"fleetdesk/internal/domain"
	"fleetdesk/internal/layout"
	"fleetdesk/internal/port"
	"fleetdesk/internal/rules"
	"fleetdesk/internal/validate"
)

// fallbackConfidence is assigned to fields recovered by the deterministic
// keyword fallback after generative extraction failed.
const fallbackConfidence = 0.3

// Pipeline processes one submission at a time. Safe for concurrent use; all
// state is per-call.
type Pipeline struct {
	extractor    port.FieldExtractor
	classifier   *classify.Classifier
	chain        []*agents.Agent
	engine       *rules.Engine
	validator    *validate.Validator
	agentTimeout time.Duration
	maxRetries   int
}

// Options tunes a Pipeline. Zero values get sensible defaults.
type Options struct {
	AgentTimeout time.Duration
	MaxRetries   int
}

// New builds a pipeline. A nil extractor puts the pipeline in degraded mode:
// deterministic fallbacks only, every record capped below review threshold.
func New(extractor port.FieldExtractor, tables *rules.Tables, opts Options) *Pipeline {
	if tables == nil {
		tables = rules.DefaultTables()
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &Pipeline{
		extractor:    extractor,
		classifier:   classify.New(extractor),
		chain:        agents.Chain(tables),
		engine:       rules.NewEngine(tables),
		validator:    validate.New(tables),
		agentTimeout: opts.AgentTimeout,
		maxRetries:   opts.MaxRetries,
	}
}

// Process runs the submission through every stage and returns the assembled
// record set. Per-record failures never abort the set; a record that could
// not be extracted still ships, null-filled and flagged for manual check.
// Only a cancelled context before any record completes returns an error.
func (p *Pipeline) Process(ctx context.Context, input *domain.RawInput) (*domain.RecordSet, error) {
	var layoutDesc *domain.LayoutDescriptor
	if input.Tabular() {
		desc, err := layout.Analyze(input.Grid)
		if err != nil {
			log.Printf("pipeline.Pipeline: layout analysis failed, treating as narrative: %v", err)
		} else {
			layoutDesc = desc
		}
	}

	cls := p.classifier.Classify(ctx, input, layoutDesc)
	slices := Slices(input, layoutDesc, cls)
	log.Printf("pipeline.Pipeline: processing %d record(s), layout=%v multiple=%t", len(slices), layoutType(layoutDesc), cls.IsMultiple)

	set := &domain.RecordSet{
		Classification: cls,
		Layout:         layoutDesc,
		Degraded:       true,
		ProcessedAt:    time.Now().UTC(),
	}

	for _, slice := range slices {
		if ctx.Err() != nil {
			set.Partial = true
			log.Printf("pipeline.Pipeline: deadline reached after %d of %d records", len(set.Records), len(slices))
			break
		}
		rec, generative := p.processRecord(ctx, slice, cls.MixedInput)
		if generative {
			set.Degraded = false
		}
		set.Records = append(set.Records, rec)
	}

	if len(set.Records) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if input.Degraded {
		// The document layer already fell back (OCR retry exhausted), so the
		// set ships best-effort regardless of how extraction went.
		set.Degraded = true
	}
	if set.Degraded {
		// Re-score under the degraded ceiling now that we know nothing
		// generative contributed anywhere in the set.
		for i := range set.Records {
			rec := &set.Records[i]
			rec.Validation = p.validator.Validate(validate.Input{Record: rec, Degraded: true, Mixed: cls.MixedInput})
		}
	}
	return set, nil
}

// processRecord runs the agent chain for one slice and assembles the record.
// The second return reports whether any stage succeeded generatively.
func (p *Pipeline) processRecord(ctx context.Context, slice agents.Slice, mixed bool) (domain.BookingRecord, bool) {
	acc := agents.NewAccumulator()
	generative := false
	fellBack := false

	for _, agent := range p.chain {
		fields, confs, err := p.runAgent(ctx, agent, slice, acc.Context())
		if err != nil {
			if !errors.Is(err, domain.ErrExtractorDown) {
				log.Printf("pipeline.Pipeline: record %d stage %s failed, using fallback: %v", slice.Index+1, agent.Name(), err)
			}
			fields = agent.Fallback(slice)
			confs = make(map[string]float64, len(fields))
			for name := range fields {
				confs[name] = fallbackConfidence
			}
			fellBack = true
		} else {
			generative = true
		}
		acc.Merge(agent.Stage(), fields, confs)
	}

	normalized := p.engine.Apply(rules.Input{
		Fields:       flatten(acc.Snapshot()),
		SourceText:   slice.Content(),
		SingleRecord: slice.Total <= 1,
	})

	rec := assemble(normalized, slice.Index, acc.Confidence())

	var conflicts []string
	for _, c := range acc.Conflicts() {
		conflicts = append(conflicts, c.String())
	}
	rec.Validation = p.validator.Validate(validate.Input{
		Record:    &rec,
		Conflicts: conflicts,
		Degraded:  fellBack && !generative,
		Mixed:     mixed,
	})
	return rec, generative
}

// runAgent executes one stage with a per-stage deadline and bounded retries.
// Rate-limit errors are not retried here; the extractor's own fallback chain
// already rotated providers before surfacing one.
func (p *Pipeline) runAgent(ctx context.Context, agent *agents.Agent, slice agents.Slice, accumulated map[string]string) (map[string]string, map[string]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		stageCtx, cancel := context.WithTimeout(ctx, p.agentTimeout)
		fields, confs, err := agent.Extract(stageCtx, p.extractor, slice, accumulated)
		cancel()
		if err == nil {
			return fields, confs, nil
		}
		lastErr = err
		if errors.Is(err, domain.ErrExtractorDown) {
			break
		}
	}
	return nil, nil, lastErr
}

// assemble builds the canonical record: every column present, null marker
// for anything unresolved.
func assemble(fields map[string]string, index int, confidence float64) domain.BookingRecord {
	out := make(map[string]string, len(domain.RecordColumns))
	for _, col := range domain.RecordColumns {
		v := fields[col]
		if v == "" {
			v = domain.NullMarker
		}
		out[col] = v
	}
	return domain.BookingRecord{
		ID:         uuid.New(),
		Index:      index,
		Fields:     out,
		Confidence: confidence,
	}
}

func flatten(fs domain.FieldSet) map[string]string {
	out := make(map[string]string, len(fs))
	for name, fv := range fs {
		out[name] = fv.Value
	}
	return out
}

func layoutType(l *domain.LayoutDescriptor) domain.LayoutType {
	if l == nil {
		return domain.LayoutUnknown
	}
	return l.Type
}
