package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawInput is a single submission as received, consumed exactly once by the
// pipeline.
type RawInput struct {
	Content     string
	Grid        [][]string
	KeyValues   map[string]string
	Source      SourceHint
	SenderEmail string
	// Degraded marks input assembled after the document layer gave up:
	// OCR retry exhausted or no OCR configured. The set it produces never
	// passes review.
	Degraded bool
}

// Tabular reports whether the submission carries a cell grid.
func (r *RawInput) Tabular() bool {
	return len(r.Grid) > 0
}

// LayoutDescriptor is the result of table-layout inference, computed once per
// tabular input.
type LayoutDescriptor struct {
	Type            LayoutType `json:"type"`
	RecordCount     int        `json:"record_count"`
	HeaderRow       bool       `json:"header_row"`
	HorizontalScore int        `json:"horizontal_score"`
	VerticalScore   int        `json:"vertical_score"`
	Indicators      []string   `json:"indicators"`
}

// FieldValue is one extracted value with its provenance and confidence.
type FieldValue struct {
	Value      string  `json:"value"`
	Stage      Stage   `json:"stage"`
	Confidence float64 `json:"confidence"`
}

// FieldSet maps canonical field names to extracted values.
type FieldSet map[string]FieldValue

// Classification is the outcome of the single-vs-multiple decision.
type Classification struct {
	IsMultiple     bool       `json:"is_multiple"`
	EstimatedCount int        `json:"estimated_count"`
	Complexity     Complexity `json:"complexity"`
	Reasoning      string     `json:"reasoning"`
	Confidence     float64    `json:"confidence"`
	LayoutDerived  bool       `json:"layout_derived"`
	MixedInput     bool       `json:"mixed_input"`
}

// Canonical field names for the fixed booking schema. RecordColumns fixes the
// output column order; every record always carries all of them.
const (
	FieldCustomer         = "customer"
	FieldBookerName       = "booker_name"
	FieldBookerPhone      = "booker_phone"
	FieldBookerEmail      = "booker_email"
	FieldPassengerName    = "passenger_name"
	FieldPassengerPhone   = "passenger_phone"
	FieldPassengerEmail   = "passenger_email"
	FieldFromLocation     = "from_location"
	FieldToLocation       = "to_location"
	FieldVehicleGroup     = "vehicle_group"
	FieldDutyType         = "duty_type"
	FieldStartDate        = "start_date"
	FieldEndDate          = "end_date"
	FieldReportingTime    = "reporting_time"
	FieldReportingAddress = "reporting_address"
	FieldDropAddress      = "drop_address"
	FieldFlightTrain      = "flight_train_number"
	FieldDispatchCenter   = "dispatch_center"
	FieldRemarks          = "remarks"
	FieldLabels           = "labels"
)

// RecordColumns is the canonical attribute order, as exported downstream.
var RecordColumns = []string{
	FieldCustomer,
	FieldBookerName,
	FieldBookerPhone,
	FieldBookerEmail,
	FieldPassengerName,
	FieldPassengerPhone,
	FieldPassengerEmail,
	FieldFromLocation,
	FieldToLocation,
	FieldVehicleGroup,
	FieldDutyType,
	FieldStartDate,
	FieldEndDate,
	FieldReportingTime,
	FieldReportingAddress,
	FieldDropAddress,
	FieldFlightTrain,
	FieldDispatchCenter,
	FieldRemarks,
	FieldLabels,
}

// ColumnTitles maps canonical field names to their display headers, in the
// shape the dispatch teams expect.
var ColumnTitles = map[string]string{
	FieldCustomer:         "Customer",
	FieldBookerName:       "Booked By Name",
	FieldBookerPhone:      "Booked By Phone Number",
	FieldBookerEmail:      "Booked By Email",
	FieldPassengerName:    "Passenger Name",
	FieldPassengerPhone:   "Passenger Phone Number",
	FieldPassengerEmail:   "Passenger Email",
	FieldFromLocation:     "From (Service Location)",
	FieldToLocation:       "To",
	FieldVehicleGroup:     "Vehicle Group",
	FieldDutyType:         "Duty Type",
	FieldStartDate:        "Start Date",
	FieldEndDate:          "End Date",
	FieldReportingTime:    "Rep. Time",
	FieldReportingAddress: "Reporting Address",
	FieldDropAddress:      "Drop Address",
	FieldFlightTrain:      "Flight/Train Number",
	FieldDispatchCenter:   "Dispatch Center",
	FieldRemarks:          "Remarks",
	FieldLabels:           "Labels",
}

// BookingRecord is one canonical booking entry. Immutable once assembled
// except for the attached validation report.
type BookingRecord struct {
	ID         uuid.UUID         `json:"id"`
	Index      int               `json:"index"`
	Fields     map[string]string `json:"fields"`
	Confidence float64           `json:"confidence"`
	Validation *ValidationReport `json:"validation,omitempty"`
}

// Get returns the value for a canonical field, or the null marker when the
// field was never set.
func (r *BookingRecord) Get(field string) string {
	if v, ok := r.Fields[field]; ok && v != "" {
		return v
	}
	return NullMarker
}

// ValidationReport scores one BookingRecord.
type ValidationReport struct {
	CompletenessScore float64        `json:"completeness_score"`
	FormatScore       float64        `json:"format_score"`
	BusinessRuleScore float64        `json:"business_rule_score"`
	OverallScore      float64        `json:"overall_score"`
	Flags             []string       `json:"flags"`
	Recommendation    Recommendation `json:"recommendation"`
}

// RecordSet is the pipeline output for one submission.
type RecordSet struct {
	SubmissionID   uuid.UUID         `json:"submission_id"`
	Records        []BookingRecord   `json:"records"`
	Classification Classification    `json:"classification"`
	Layout         *LayoutDescriptor `json:"layout,omitempty"`
	Degraded       bool              `json:"degraded"`
	Partial        bool              `json:"partial"`
	ProcessedAt    time.Time         `json:"processed_at"`
}

// Submission is the persisted envelope around one RawInput and its result.
type Submission struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Source      SourceHint       `db:"source" json:"source"`
	SenderEmail string           `db:"sender_email" json:"sender_email"`
	Content     string           `db:"content" json:"content"`
	Status      SubmissionStatus `db:"status" json:"status"`
	FailReason  string           `db:"fail_reason" json:"fail_reason"`
	RecordCount int              `db:"record_count" json:"record_count"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at"`
}
