package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/export"
	"fleetdesk/internal/pipeline"
	"fleetdesk/internal/port"
	"fleetdesk/mocks"
)

func newService(tables port.TableExtractor, repo port.SubmissionRepository) BookingService {
	pipe := pipeline.New(nil, nil, pipeline.Options{})
	return NewBookingService(pipe, tables, repo, export.NewCSVSink(), export.NewXLSXSink(), Options{})
}

func TestProcessText_EmptyInput(t *testing.T) {
	svc := newService(nil, nil)

	_, err := svc.ProcessText(context.Background(), &CreateSubmissionInput{Content: "   \n\t"})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestProcessText_PersistsEnvelopeAndResult(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	repo.On("CreateSubmission", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateSubmission", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveRecordSet", mock.Anything, mock.Anything).Return(nil)

	svc := newService(nil, repo)
	set, err := svc.ProcessText(context.Background(), &CreateSubmissionInput{
		Content:     "Passenger: Anita Shah\nPhone: 9811122233\nCab at 10am from Powai.",
		SenderEmail: "travel@acme.in",
	})
	require.NoError(t, err)
	require.Len(t, set.Records, 1)
	assert.NotEqual(t, uuid.Nil, set.SubmissionID)

	repo.AssertExpectations(t)
	updated := repo.Calls[1].Arguments.Get(1).(*domain.Submission)
	assert.Equal(t, domain.SubmissionProcessed, updated.Status)
	assert.Equal(t, 1, updated.RecordCount)
}

func TestProcessText_PersistenceFailureIsNotFatal(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	repo.On("CreateSubmission", mock.Anything, mock.Anything).Return(errors.New("db down"))
	repo.On("UpdateSubmission", mock.Anything, mock.Anything).Return(errors.New("db down"))
	repo.On("SaveRecordSet", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := newService(nil, repo)
	set, err := svc.ProcessText(context.Background(), &CreateSubmissionInput{Content: "cab for tomorrow"})

	require.NoError(t, err)
	require.Len(t, set.Records, 1)
}

func TestProcessDocument_Rejections(t *testing.T) {
	svc := newService(nil, nil)
	ctx := context.Background()

	_, err := svc.ProcessDocument(ctx, &UploadSubmissionInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = svc.ProcessDocument(ctx, &UploadSubmissionInput{
		Bytes:       []byte("data"),
		ContentType: "application/zip",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	big := NewBookingService(pipeline.New(nil, nil, pipeline.Options{}), nil, nil,
		export.NewCSVSink(), export.NewXLSXSink(), Options{MaxUploadBytes: 8})
	_, err = big.ProcessDocument(ctx, &UploadSubmissionInput{
		Bytes:       bytes.Repeat([]byte("x"), 16),
		ContentType: "image/png",
	})
	assert.ErrorIs(t, err, domain.ErrInputRejected)
}

func TestProcessDocument_NoOCRConfigured(t *testing.T) {
	svc := newService(nil, nil)

	set, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("fake png"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	require.Len(t, set.Records, 1)
	assert.True(t, set.Degraded)
	rec := set.Records[0]
	assert.Equal(t, domain.NullMarker, rec.Get(domain.FieldPassengerName))
	assert.Equal(t, domain.RecommendManualCheck, rec.Validation.Recommendation)
	assert.Less(t, rec.Validation.OverallScore, 0.7)
}

func TestProcessDocument_GridFlowsToPipeline(t *testing.T) {
	tables := new(mocks.MockTableExtractor)
	tables.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(&port.TableOutput{
		Grid: [][]string{
			{"S.No", "Passenger Name", "Phone"},
			{"1", "Rajesh Kumar", "9876543210"},
			{"2", "Anita Shah", "9811122233"},
		},
	}, nil)

	svc := newService(tables, nil)
	set, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("fake scan"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	require.Len(t, set.Records, 2)
	assert.Equal(t, "Rajesh Kumar", set.Records[0].Get(domain.FieldPassengerName))
	tables.AssertExpectations(t)
}

func TestProcessDocument_OCRFailureDegradesAfterRetry(t *testing.T) {
	tables := new(mocks.MockTableExtractor)
	ocrErr := errors.New("textract: throttled")
	tables.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(nil, ocrErr).Twice()

	svc := newService(tables, nil)
	set, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("fake scan"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	tables.AssertExpectations(t)
	require.Len(t, set.Records, 1)
	assert.True(t, set.Degraded)
	assert.Equal(t, domain.RecommendManualCheck, set.Records[0].Validation.Recommendation)
}

func TestProcessDocument_RetryRecoversGrid(t *testing.T) {
	tables := new(mocks.MockTableExtractor)
	tables.On("AnalyzeDocument", mock.Anything, mock.Anything).
		Return(nil, errors.New("textract: throttled")).Once()
	tables.On("AnalyzeDocument", mock.Anything, mock.Anything).
		Return(&port.TableOutput{
			Grid: [][]string{
				{"S.No", "Passenger Name", "Phone"},
				{"1", "Rajesh Kumar", "9876543210"},
			},
		}, nil).Once()

	svc := newService(tables, nil)
	set, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("fake scan"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	tables.AssertExpectations(t)
	require.Len(t, set.Records, 1)
	assert.Equal(t, "Rajesh Kumar", set.Records[0].Get(domain.FieldPassengerName))
}

func TestProcessDocument_RejectionIsFinal(t *testing.T) {
	tables := new(mocks.MockTableExtractor)
	tables.On("AnalyzeDocument", mock.Anything, mock.Anything).
		Return(nil, domain.ErrInputTooSmall).Once()

	svc := newService(tables, nil)
	_, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("tiny"),
		ContentType: "image/png",
	})
	assert.ErrorIs(t, err, domain.ErrInputTooSmall)
	tables.AssertExpectations(t)
}

func TestProcessDocument_PlainTextSkipsOCR(t *testing.T) {
	svc := newService(nil, nil)
	set, err := svc.ProcessDocument(context.Background(), &UploadSubmissionInput{
		Bytes:       []byte("Passenger: Vikram Singh, pickup 9am"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	require.Len(t, set.Records, 1)
}

func TestExport_Formats(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	id := uuid.New()
	repo.On("GetRecordSet", mock.Anything, id).Return(&domain.RecordSet{SubmissionID: id}, nil)

	svc := newService(nil, repo)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), id, "csv", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), export.BOM))

	buf.Reset()
	require.NoError(t, svc.Export(context.Background(), id, "xlsx", &buf))
	assert.NotZero(t, buf.Len())

	err := svc.Export(context.Background(), id, "yaml", &buf)
	assert.ErrorIs(t, err, domain.ErrInputRejected)

	missing := uuid.New()
	repo.On("GetRecordSet", mock.Anything, missing).Return(nil, domain.ErrNotFound)
	err = svc.Export(context.Background(), missing, "csv", &buf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSubmissions_ClampsPaging(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	repo.On("ListSubmissions", mock.Anything, 0, 50).Return([]domain.Submission{}, 0, nil)

	svc := newService(nil, repo)
	_, _, err := svc.ListSubmissions(context.Background(), -5, 1000)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
