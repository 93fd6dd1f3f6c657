package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"hiring-contest-service/internal/domain"
)

// JobLoader loads job JSONB straight from the pool. It backs the job cache's miss path,
// which is hit on every attempt start.
type JobLoader struct {
	pool *pgxpool.Pool
}

func NewJobLoader(pool *pgxpool.Pool) *JobLoader {
	return &JobLoader{pool: pool}
}

func (l *JobLoader) LoadJob(ctx context.Context, jobID string) (domain.Job, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM jobs WHERE id=$1`, jobID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, domain.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, errors.Wrap(err, "load job")
	}
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.Job{}, errors.Wrap(err, "unmarshal job")
	}
	return job, nil
}
