package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"hiring-contest-service/internal/domain"
)

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions"`

	ID              string          `bun:"id,pk"`
	JobID           string          `bun:"job_id,notnull"`
	CandidateID     string          `bun:"candidate_id,notnull"`
	Score           int             `bun:"score,notnull"`
	Total           int             `bun:"total,notnull"`
	DurationSeconds int64           `bun:"duration_seconds,notnull"`
	SubmissionTime  time.Time       `bun:"submission_time,notnull"`
	Answers         []domain.Answer `bun:"answers,type:jsonb,notnull"`
}

func (r submissionRow) toDomain() domain.Submission {
	return domain.Submission{
		ID:              r.ID,
		JobID:           r.JobID,
		CandidateID:     r.CandidateID,
		Answers:         r.Answers,
		Score:           r.Score,
		Total:           r.Total,
		SubmissionTime:  r.SubmissionTime,
		DurationSeconds: r.DurationSeconds,
	}
}

// SubmissionStore persists submissions. The (job_id, candidate_id) unique constraint is
// what makes a second submission for the same pair impossible.
type SubmissionStore struct {
	db *bun.DB
}

func NewSubmissionStore(db *bun.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	answers := sub.Answers
	if answers == nil {
		answers = []domain.Answer{}
	}
	row := &submissionRow{
		ID:              sub.ID,
		JobID:           sub.JobID,
		CandidateID:     sub.CandidateID,
		Score:           sub.Score,
		Total:           sub.Total,
		DurationSeconds: sub.DurationSeconds,
		SubmissionTime:  sub.SubmissionTime,
		Answers:         answers,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadySubmitted
		}
		return errors.Wrap(err, "insert submission")
	}
	return nil
}

func (s *SubmissionStore) ListByJob(ctx context.Context, jobID string) ([]domain.Submission, error) {
	return s.list(ctx, "job_id = ?", jobID)
}

func (s *SubmissionStore) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Submission, error) {
	return s.list(ctx, "candidate_id = ?", candidateID)
}

func (s *SubmissionStore) HasSubmitted(ctx context.Context, jobID, candidateID string) (bool, error) {
	ok, err := s.db.NewSelect().Model((*submissionRow)(nil)).
		Where("job_id = ?", jobID).
		Where("candidate_id = ?", candidateID).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, "check submission")
	}
	return ok, nil
}

func (s *SubmissionStore) CountByJob(ctx context.Context, jobID string) (int, error) {
	n, err := s.db.NewSelect().Model((*submissionRow)(nil)).Where("job_id = ?", jobID).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count submissions")
	}
	return n, nil
}

func (s *SubmissionStore) list(ctx context.Context, where string, arg string) ([]domain.Submission, error) {
	var rows []submissionRow
	err := s.db.NewSelect().Model(&rows).Where(where, arg).Order("submission_time ASC", "id ASC").Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	out := make([]domain.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
