package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/pipeline"
	"fleetdesk/internal/port"
)

// CreateSubmissionInput is the DTO for a text submission.
type CreateSubmissionInput struct {
	Content     string
	SenderEmail string
}

// UploadSubmissionInput is the DTO for a document submission (scanned form,
// table screenshot, PDF).
type UploadSubmissionInput struct {
	Bytes       []byte
	ContentType string
	SenderEmail string
}

// BookingService defines the submission-processing contract.
type BookingService interface {
	ProcessText(ctx context.Context, input *CreateSubmissionInput) (*domain.RecordSet, error)
	ProcessDocument(ctx context.Context, input *UploadSubmissionInput) (*domain.RecordSet, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)
	GetRecordSet(ctx context.Context, submissionID uuid.UUID) (*domain.RecordSet, error)
	Export(ctx context.Context, submissionID uuid.UUID, format string, w io.Writer) error
}

type bookingService struct {
	pipe              *pipeline.Pipeline
	tables            port.TableExtractor
	repo              port.SubmissionRepository
	csvSink           port.RecordSink
	xlsxSink          port.RecordSink
	submissionTimeout time.Duration
	maxUploadBytes    int64
}

// Options configures a booking service.
type Options struct {
	SubmissionTimeout time.Duration
	MaxUploadBytes    int64
}

// NewBookingService wires the pipeline with its storage and export ports.
// The table extractor may be nil when OCR is not configured; document
// submissions then ship as degraded best-effort sets.
func NewBookingService(pipe *pipeline.Pipeline, tables port.TableExtractor, repo port.SubmissionRepository, csvSink, xlsxSink port.RecordSink, opts Options) BookingService {
	if opts.SubmissionTimeout <= 0 {
		opts.SubmissionTimeout = 5 * time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &bookingService{
		pipe:              pipe,
		tables:            tables,
		repo:              repo,
		csvSink:           csvSink,
		xlsxSink:          xlsxSink,
		submissionTimeout: opts.SubmissionTimeout,
		maxUploadBytes:    opts.MaxUploadBytes,
	}
}

func (s *bookingService) ProcessText(ctx context.Context, input *CreateSubmissionInput) (*domain.RecordSet, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.ErrEmptyInput
	}
	raw := &domain.RawInput{
		Content:     content,
		Source:      domain.SourceEmail,
		SenderEmail: input.SenderEmail,
	}
	return s.process(ctx, raw)
}

func (s *bookingService) ProcessDocument(ctx context.Context, input *UploadSubmissionInput) (*domain.RecordSet, error) {
	if len(input.Bytes) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if int64(len(input.Bytes)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInputRejected, s.maxUploadBytes)
	}
	source, ok := domain.AllowedContentTypes[input.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.ContentType)
	}

	raw := &domain.RawInput{
		Source:      source,
		SenderEmail: input.SenderEmail,
	}
	if source.IsDocument() {
		out, err := s.analyzeWithRetry(ctx, input)
		switch {
		case err == nil:
			raw.Grid = out.Grid
			raw.KeyValues = out.KeyValues
			raw.Content = flattenGrid(out.Grid)
		case errors.Is(err, domain.ErrInputTooSmall) || errors.Is(err, domain.ErrInputRejected):
			return nil, err
		default:
			// OCR is down or never configured. The submission still ships: a
			// best-effort set, null-filled where nothing could be read, every
			// record held at manual check.
			log.Printf("service.BookingService: document analysis unavailable, shipping degraded set: %v", err)
			raw.Degraded = true
		}
	} else {
		raw.Content = string(input.Bytes)
	}
	return s.process(ctx, raw)
}

// analyzeWithRetry calls the table extractor, retrying once on a transient
// failure. Rejections are final and never retried; a missing extractor is
// reported as the service being down so the caller degrades the same way.
func (s *bookingService) analyzeWithRetry(ctx context.Context, input *UploadSubmissionInput) (*port.TableOutput, error) {
	if s.tables == nil {
		return nil, fmt.Errorf("%w: no table extractor configured", domain.ErrOCRDown)
	}
	doc := port.DocumentInput{
		Bytes:       input.Bytes,
		ContentType: input.ContentType,
	}
	out, err := s.tables.AnalyzeDocument(ctx, doc)
	if err == nil ||
		errors.Is(err, domain.ErrInputTooSmall) ||
		errors.Is(err, domain.ErrInputRejected) ||
		ctx.Err() != nil {
		return out, err
	}
	log.Printf("service.BookingService: document analysis failed, retrying once: %v", err)
	return s.tables.AnalyzeDocument(ctx, doc)
}

// process runs the pipeline under the submission deadline and persists both
// the envelope and the result. Persistence failures are logged, not fatal:
// the caller still gets the record set.
func (s *bookingService) process(ctx context.Context, raw *domain.RawInput) (*domain.RecordSet, error) {
	sub := &domain.Submission{
		ID:          uuid.New(),
		Source:      raw.Source,
		SenderEmail: raw.SenderEmail,
		Content:     raw.Content,
		Status:      domain.SubmissionPending,
	}
	if s.repo != nil {
		if err := s.repo.CreateSubmission(ctx, sub); err != nil {
			log.Printf("service.BookingService: create submission: %v", err)
		}
	}

	pipeCtx, cancel := context.WithTimeout(ctx, s.submissionTimeout)
	defer cancel()

	set, err := s.pipe.Process(pipeCtx, raw)
	if err != nil {
		s.markFailed(ctx, sub, err)
		return nil, err
	}
	set.SubmissionID = sub.ID

	now := time.Now().UTC()
	sub.Status = domain.SubmissionProcessed
	sub.RecordCount = len(set.Records)
	sub.ProcessedAt = &now
	if s.repo != nil {
		if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
			log.Printf("service.BookingService: update submission %s: %v", sub.ID, err)
		}
		if err := s.repo.SaveRecordSet(ctx, set); err != nil {
			log.Printf("service.BookingService: save record set %s: %v", sub.ID, err)
		}
	}
	return set, nil
}

func (s *bookingService) markFailed(ctx context.Context, sub *domain.Submission, cause error) {
	if s.repo == nil {
		return
	}
	sub.Status = domain.SubmissionFailed
	sub.FailReason = cause.Error()
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		log.Printf("service.BookingService: mark submission %s failed: %v", sub.ID, err)
	}
}

func (s *bookingService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if s.repo == nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetSubmission(ctx, id)
}

func (s *bookingService) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListSubmissions(ctx, offset, limit)
}

func (s *bookingService) GetRecordSet(ctx context.Context, submissionID uuid.UUID) (*domain.RecordSet, error) {
	if s.repo == nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetRecordSet(ctx, submissionID)
}

func (s *bookingService) Export(ctx context.Context, submissionID uuid.UUID, format string, w io.Writer) error {
	set, err := s.GetRecordSet(ctx, submissionID)
	if err != nil {
		return err
	}
	switch format {
	case "", "csv":
		return s.csvSink.WriteRecordSet(w, set)
	case "xlsx":
		return s.xlsxSink.WriteRecordSet(w, set)
	default:
		return fmt.Errorf("%w: unsupported export format %q", domain.ErrInputRejected, format)
	}
}

// flattenGrid renders the OCR grid as plain text so narrative heuristics and
// classification still have something to chew on.
func flattenGrid(grid [][]string) string {
	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String()
}
