package port

import (
	"context"

	"github.com/google/uuid"

	"fleetdesk/internal/domain"
)

// SubmissionRepository persists submissions and their canonical record sets.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	UpdateSubmission(ctx context.Context, sub *domain.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)

	SaveRecordSet(ctx context.Context, set *domain.RecordSet) error
	GetRecordSet(ctx context.Context, submissionID uuid.UUID) (*domain.RecordSet, error)
}
