package domain

// NullMarker is the explicit placeholder written into any canonical field
// that resolved as absent. Fields are never omitted or left empty.
const NullMarker = "NA"

// SourceHint identifies the format of a raw submission.
type SourceHint string

const (
	SourceEmail SourceHint = "email"
	SourceImage SourceHint = "image"
	SourcePDF   SourceHint = "pdf"
	SourceDocx  SourceHint = "docx"
)

// AllowedContentTypes maps upload MIME content types to their SourceHint.
var AllowedContentTypes = map[string]SourceHint{
	"application/pdf": SourcePDF,
	"image/jpeg":      SourceImage,
	"image/png":       SourceImage,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": SourceDocx,
	"text/plain": SourceEmail,
}

// IsDocument reports whether the source needs OCR/table extraction before
// the pipeline can run.
func (s SourceHint) IsDocument() bool {
	return s == SourceImage || s == SourcePDF || s == SourceDocx
}

// LayoutType is the inferred axis along which a tabular input holds records.
type LayoutType string

const (
	// LayoutHorizontal: columns are records, rows are field labels.
	LayoutHorizontal LayoutType = "horizontal"
	// LayoutVertical: rows are records, columns are fields.
	LayoutVertical LayoutType = "vertical"
	LayoutUnknown  LayoutType = "unknown"
)

// Complexity grades a classified submission.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Recommendation is the disposition attached to a validated record.
type Recommendation string

const (
	RecommendAccept      Recommendation = "auto_accept"
	RecommendReview      Recommendation = "needs_review"
	RecommendManualCheck Recommendation = "requires_manual_check"
)

// Stage identifies which pipeline stage produced a field value.
type Stage string

const (
	StageCorporateBooker  Stage = "corporate_booker"
	StageTravelerIdentity Stage = "traveler_identity"
	StageLocationTime     Stage = "location_time"
	StageDutyVehicle      Stage = "duty_vehicle"
	StageTransportRefs    Stage = "transport_refs"
	StageRequirements     Stage = "requirements"
	StageFallback         Stage = "fallback"
	StageNormalization    Stage = "normalization"
)

// SubmissionStatus tracks the lifecycle of a submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionProcessed SubmissionStatus = "processed"
	SubmissionFailed    SubmissionStatus = "failed"
)

// CorporateCategory distinguishes corporate (G2G) from individual (P2P)
// bookings.
type CorporateCategory string

const (
	CategoryCorporate  CorporateCategory = "G2G"
	CategoryIndividual CorporateCategory = "P2P"
)

// DutyPackage is the service-package portion of a duty-type code.
type DutyPackage string

const (
	PackageTransfer       DutyPackage = "04HR 40KMS"
	PackageDisposal       DutyPackage = "08HR 80KMS"
	PackageOutstationNear DutyPackage = "Outstation 250KMS"
	PackageOutstationFar  DutyPackage = "Outstation 300KMS"
)

// DutyPackages lists every canonical package. Used by format validation.
var DutyPackages = []DutyPackage{
	PackageTransfer,
	PackageDisposal,
	PackageOutstationNear,
	PackageOutstationFar,
}

// Labels attachable to a record. Both are presence checks over source text.
const (
	LabelLadyGuest = "LadyGuest"
	LabelVIP       = "VIP"
)
