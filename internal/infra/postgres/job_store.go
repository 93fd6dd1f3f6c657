package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"hiring-contest-service/internal/domain"
)

type jobRow struct {
	bun.BaseModel `bun:"table:jobs"`

	ID         string     `bun:"id,pk"`
	EmployerID string     `bun:"employer_id,notnull"`
	Title      string     `bun:"title,notnull"`
	StartDate  time.Time  `bun:"start_date,notnull"`
	EndDate    time.Time  `bun:"end_date,notnull"`
	CreatedAt  time.Time  `bun:"created_at,notnull"`
	Data       domain.Job `bun:"data,type:jsonb,notnull"`
}

// JobStore persists jobs with bun. The full job, trials included, lives in the data column;
// the other columns exist for filtering.
type JobStore struct {
	db *bun.DB
}

func NewJobStore(db *bun.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) CreateJob(ctx context.Context, job domain.Job) error {
	row := &jobRow{
		ID:         job.ID,
		EmployerID: job.EmployerID,
		Title:      job.Title,
		StartDate:  job.StartDate,
		EndDate:    job.EndDate,
		CreatedAt:  job.CreatedAt,
		Data:       job,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return errors.Wrap(err, "insert job")
	}
	return nil
}

func (s *JobStore) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	return s.LoadJob(ctx, jobID)
}

func (s *JobStore) LoadJob(ctx context.Context, jobID string) (domain.Job, error) {
	row := new(jobRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", jobID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, domain.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, errors.Wrap(err, "select job")
	}
	return row.Data, nil
}

// ListJobs returns jobs oldest first.
func (s *JobStore) ListJobs(ctx context.Context) ([]domain.Job, error) {
	var rows []jobRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	jobs := make([]domain.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.Data)
	}
	return jobs, nil
}
