package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/port"
)

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	sub.CreatedAt = time.Now().UTC()

	query := `INSERT INTO submissions (
		id, source, sender_email, content, status, fail_reason,
		record_count, created_at, processed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.Source, sub.SenderEmail, sub.Content, sub.Status,
		sub.FailReason, sub.RecordCount, sub.CreatedAt, sub.ProcessedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.CreateSubmission: %w", err)
	}
	return nil
}

func (r *submissionRepo) UpdateSubmission(ctx context.Context, sub *domain.Submission) error {
	query := `UPDATE submissions SET
		status = $2, fail_reason = $3, record_count = $4, processed_at = $5
	WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.Status, sub.FailReason, sub.RecordCount, sub.ProcessedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.UpdateSubmission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub, "SELECT * FROM submissions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetSubmission: %w", err)
	}
	return &sub, nil
}

func (r *submissionRepo) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM submissions"); err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListSubmissions count: %w", err)
	}

	var subs []domain.Submission
	err := r.db.SelectContext(ctx, &subs,
		"SELECT * FROM submissions ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListSubmissions: %w", err)
	}
	return subs, total, nil
}

// recordSetRow is the persisted shape: the full record set as one JSONB
// document keyed by submission.
type recordSetRow struct {
	SubmissionID uuid.UUID       `db:"submission_id"`
	Payload      json.RawMessage `db:"payload"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r *submissionRepo) SaveRecordSet(ctx context.Context, set *domain.RecordSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("submissionRepo.SaveRecordSet marshal: %w", err)
	}

	query := `INSERT INTO record_sets (submission_id, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (submission_id) DO UPDATE SET payload = $2, created_at = $3`

	_, err = r.db.ExecContext(ctx, query, set.SubmissionID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("submissionRepo.SaveRecordSet: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetRecordSet(ctx context.Context, submissionID uuid.UUID) (*domain.RecordSet, error) {
	var row recordSetRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM record_sets WHERE submission_id = $1", submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetRecordSet: %w", err)
	}

	var set domain.RecordSet
	if err := json.Unmarshal(row.Payload, &set); err != nil {
		return nil, fmt.Errorf("submissionRepo.GetRecordSet unmarshal: %w", err)
	}
	return &set, nil
}
