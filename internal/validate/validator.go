// Package validate scores assembled booking records and merges rule-based
// scores with extraction confidence into a single disposition.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/rules"
)

// Thresholds for the disposition bands.
const (
	acceptThreshold = 0.9
	reviewThreshold = 0.7

	// degradedCeiling caps the overall score when extraction ran without a
	// generative collaborator, so no record can slip past manual check.
	degradedCeiling = 0.65
)

// Score weights. Extraction confidence carries the largest share because it
// is the only signal that reflects how sure the collaborator was about the
// values themselves, not just their shape.
const (
	weightCompleteness = 0.25
	weightFormat       = 0.20
	weightBusiness     = 0.20
	weightExtraction   = 0.35
)

// criticalFields must be present for a record to be dispatchable. Missing
// ones weigh double in the completeness score.
var criticalFields = []string{
	domain.FieldCustomer,
	domain.FieldPassengerName,
	domain.FieldPassengerPhone,
	domain.FieldFromLocation,
	domain.FieldStartDate,
	domain.FieldReportingTime,
	domain.FieldVehicleGroup,
	domain.FieldDutyType,
}

var (
	phoneRe    = regexp.MustCompile(`^(\+91[\s\-]?)?[6-9]\d{4}[\s\-]?\d{5}$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	timeRe     = regexp.MustCompile(`^\d{1,2}:(00|15|30|45)$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dutyCodeRe = regexp.MustCompile(`^(G2G|P2P)-(04HR 40KMS|08HR 80KMS|Outstation (250|300)KMS)$`)
)

// Validator scores records against the canonical schema and the business
// lookup tables.
type Validator struct {
	tables *rules.Tables
}

func New(tables *rules.Tables) *Validator {
	if tables == nil {
		tables = rules.DefaultTables()
	}
	return &Validator{tables: tables}
}

// Input carries everything the validator needs for one record.
type Input struct {
	Record    *domain.BookingRecord
	Conflicts []string
	// Degraded marks that nothing generative contributed: keyword fallback
	// only. The record still ships, but never above manual check.
	Degraded bool
	// Mixed marks a submission holding both a table and multi-record
	// narrative. The table won, but the count is suspect, so every record
	// stays at manual check.
	Mixed bool
}

// Validate scores the record and attaches the report. The record's own
// Confidence field must already hold the merged extraction confidence.
func (v *Validator) Validate(in Input) *domain.ValidationReport {
	rec := in.Record
	report := &domain.ValidationReport{}

	report.CompletenessScore = v.completeness(rec, report)
	report.FormatScore = v.format(rec, report)
	report.BusinessRuleScore = v.business(rec, report)

	for _, c := range in.Conflicts {
		report.Flags = append(report.Flags, "stage conflict: "+c)
	}

	overall := weightCompleteness*report.CompletenessScore +
		weightFormat*report.FormatScore +
		weightBusiness*report.BusinessRuleScore +
		weightExtraction*rec.Confidence

	if in.Degraded {
		report.Flags = append(report.Flags, "extraction ran in degraded mode")
		if overall > degradedCeiling {
			overall = degradedCeiling
		}
	}
	if in.Mixed {
		report.Flags = append(report.Flags, "mixed tabular and narrative input")
		if overall > degradedCeiling {
			overall = degradedCeiling
		}
	}
	report.OverallScore = overall
	report.Recommendation = recommend(overall)
	return report
}

func recommend(score float64) domain.Recommendation {
	switch {
	case score >= acceptThreshold:
		return domain.RecommendAccept
	case score >= reviewThreshold:
		return domain.RecommendReview
	default:
		return domain.RecommendManualCheck
	}
}

func (v *Validator) completeness(rec *domain.BookingRecord, report *domain.ValidationReport) float64 {
	var got, total float64
	for _, field := range domain.RecordColumns {
		weight := 1.0
		if isCritical(field) {
			weight = 2.0
		}
		total += weight
		if rec.Get(field) != domain.NullMarker {
			got += weight
		} else if isCritical(field) {
			report.Flags = append(report.Flags, "missing critical field: "+field)
		}
	}
	return got / total
}

func (v *Validator) format(rec *domain.BookingRecord, report *domain.ValidationReport) float64 {
	type check struct {
		field string
		re    *regexp.Regexp
		label string
	}
	checks := []check{
		{domain.FieldBookerPhone, phoneRe, "phone"},
		{domain.FieldPassengerPhone, phoneRe, "phone"},
		{domain.FieldBookerEmail, emailRe, "email"},
		{domain.FieldPassengerEmail, emailRe, "email"},
		{domain.FieldReportingTime, timeRe, "quarter-hour time"},
		{domain.FieldStartDate, dateRe, "yyyy-mm-dd date"},
		{domain.FieldEndDate, dateRe, "yyyy-mm-dd date"},
		{domain.FieldDutyType, dutyCodeRe, "duty code"},
	}

	var checked, passed float64
	for _, c := range checks {
		val := rec.Get(c.field)
		if val == domain.NullMarker {
			continue
		}
		checked++
		if c.re.MatchString(val) {
			passed++
		} else {
			report.Flags = append(report.Flags, fmt.Sprintf("%s is not a valid %s: %q", c.field, c.label, val))
		}
	}
	if checked == 0 {
		return 0
	}
	return passed / checked
}

func (v *Validator) business(rec *domain.BookingRecord, report *domain.ValidationReport) float64 {
	var checked, passed float64
	flag := func(ok bool, msg string) {
		checked++
		if ok {
			passed++
		} else {
			report.Flags = append(report.Flags, msg)
		}
	}

	duty := rec.Get(domain.FieldDutyType)
	from := rec.Get(domain.FieldFromLocation)
	to := rec.Get(domain.FieldToLocation)
	if duty != domain.NullMarker && from != domain.NullMarker && to != domain.NullMarker {
		outstation := strings.Contains(duty, "Outstation")
		distinct := !strings.EqualFold(v.tables.CanonicalCity(from), v.tables.CanonicalCity(to))
		// A collapsed same-day return legitimately carries the base city on
		// both ends of an outstation duty; the remarks keep the marker.
		roundTrip := rules.IsRoundTrip(rec.Get(domain.FieldRemarks))
		flag(outstation == distinct || roundTrip, fmt.Sprintf("duty code %q inconsistent with route %s to %s", duty, from, to))
	}

	if vg := rec.Get(domain.FieldVehicleGroup); vg != domain.NullMarker {
		flag(v.tables.KnownVehicle(vg), fmt.Sprintf("vehicle group %q not in fleet catalog", vg))
	}

	if start, end := rec.Get(domain.FieldStartDate), rec.Get(domain.FieldEndDate); start != domain.NullMarker && end != domain.NullMarker {
		// Dates arrive in free form; only flag the obvious case where the
		// strings are comparable and reversed.
		flag(!reversedISO(start, end), fmt.Sprintf("end date %q precedes start date %q", end, start))
	}

	if labels := rec.Get(domain.FieldLabels); labels != domain.NullMarker {
		flag(validLabels(labels), fmt.Sprintf("unknown label in %q", labels))
	}

	if checked == 0 {
		return 1
	}
	return passed / checked
}

func isCritical(field string) bool {
	for _, f := range criticalFields {
		if f == field {
			return true
		}
	}
	return false
}

func reversedISO(start, end string) bool {
	if !dateRe.MatchString(start) || !dateRe.MatchString(end) {
		return false
	}
	return end < start
}

func validLabels(labels string) bool {
	for _, l := range strings.Split(labels, ",") {
		switch strings.TrimSpace(l) {
		case domain.LabelLadyGuest, domain.LabelVIP, "":
		default:
			return false
		}
	}
	return true
}
