package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fleetdesk/internal/domain"
)

// MockSubmissionRepo is a mock implementation of port.SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepo) UpdateSubmission(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) SaveRecordSet(ctx context.Context, set *domain.RecordSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetRecordSet(ctx context.Context, submissionID uuid.UUID) (*domain.RecordSet, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordSet), args.Error(1)
}
