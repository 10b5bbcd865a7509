package rules

import (
	"fmt"
	"strings"

	"fleetdesk/internal/domain"
)

// Engine applies the deterministic normalization and business rules to one
// record after raw extraction. Pure: no external calls, no shared state
// beyond the immutable lookup tables.
type Engine struct {
	tables *Tables
}

// NewEngine creates a rule engine over the given lookup tables.
func NewEngine(tables *Tables) *Engine {
	return &Engine{tables: tables}
}

// Input is everything normalization may consult for one record.
type Input struct {
	Fields map[string]string
	// SourceText is the record's slice of the original submission.
	SourceText string
	// Extras holds extracted content that mapped to no defined field, in
	// encounter order.
	Extras []string
	// SingleRecord marks a one-record submission; VIP binding relaxes to the
	// whole text in that case.
	SingleRecord bool
}

// Apply runs every rule and returns a fresh field map; the input is not
// mutated. Field application order matters: duty derivation reads the raw
// origin/destination pair before round-trip collapsing rewrites it.
func (e *Engine) Apply(in Input) map[string]string {
	out := make(map[string]string, len(in.Fields))
	for k, v := range in.Fields {
		out[k] = v
	}
	remarks := NewRemarksBuilder(out[domain.FieldRemarks])

	e.roundReportingTime(out, remarks)

	dutyText := value(out, domain.FieldDutyType)
	if dutyText == "" {
		dutyText = in.SourceText
	}

	out[domain.FieldDutyType] = e.tables.DutyType(DutyInput{
		Organization:  value(out, domain.FieldCustomer),
		BookerEmail:   value(out, domain.FieldBookerEmail),
		TravelerEmail: value(out, domain.FieldPassengerEmail),
		DutyText:      dutyText,
		FromCity:      value(out, domain.FieldFromLocation),
		ToCity:        value(out, domain.FieldToLocation),
	})

	e.collapseRoundTrip(out, dutyText, remarks)
	e.canonicalizeCities(out)

	out[domain.FieldDispatchCenter] = e.tables.DispatchCenter(value(out, domain.FieldFromLocation))
	out[domain.FieldVehicleGroup] = e.tables.CanonicalVehicle(value(out, domain.FieldVehicleGroup))

	labels := Labels(value(out, domain.FieldPassengerName), in.SourceText, in.SingleRecord)
	if len(labels) > 0 {
		out[domain.FieldLabels] = strings.Join(labels, ", ")
	}

	for _, extra := range in.Extras {
		remarks.Append(extra)
	}
	if !remarks.Empty() {
		out[domain.FieldRemarks] = remarks.String()
	}

	return out
}

func (e *Engine) roundReportingTime(fields map[string]string, remarks *RemarksBuilder) {
	raw := value(fields, domain.FieldReportingTime)
	if raw == "" {
		return
	}
	rounded := RoundTime(raw)
	if rounded == raw {
		return
	}
	fields[domain.FieldReportingTime] = rounded
	remarks.Append(fmt.Sprintf("Time rounded from %s to %s", raw, rounded))
}

// collapseRoundTrip sets both cities to the base city for a same-day return.
// The visited intermediate city survives only in remarks.
func (e *Engine) collapseRoundTrip(fields map[string]string, dutyText string, remarks *RemarksBuilder) {
	if !IsRoundTrip(dutyText) {
		return
	}
	base := value(fields, domain.FieldFromLocation)
	if base == "" {
		base = e.firstCityIn(value(fields, domain.FieldReportingAddress))
	}
	if base == "" {
		return
	}
	base = e.tables.CanonicalCity(base)

	to := e.tables.CanonicalCity(value(fields, domain.FieldToLocation))
	visited := to
	if visited == "" || NormalizeKey(visited) == NormalizeKey(base) {
		visited = e.tables.visitedCity(strings.ToLower(dutyText))
	}
	if visited != "" && NormalizeKey(visited) != NormalizeKey(base) {
		remarks.Append(fmt.Sprintf("Round trip via %s, same day return", visited))
	}

	fields[domain.FieldFromLocation] = base
	fields[domain.FieldToLocation] = base
}

func (e *Engine) canonicalizeCities(fields map[string]string) {
	for _, f := range []string{domain.FieldFromLocation, domain.FieldToLocation} {
		if v := value(fields, f); v != "" {
			fields[f] = e.tables.CanonicalCity(v)
		}
	}
}

func (e *Engine) firstCityIn(text string) string {
	return e.tables.visitedCity(strings.ToLower(text))
}

// value reads a field treating the null marker as absent.
func value(fields map[string]string, key string) string {
	v := strings.TrimSpace(fields[key])
	if v == domain.NullMarker || strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}
