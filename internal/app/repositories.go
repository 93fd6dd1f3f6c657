package app

import (
	"context"

	"hiring-contest-service/internal/domain"
)

// JobRepository stores jobs. GetJob is usually served through a read-through cache.
type JobRepository interface {
	CreateJob(ctx context.Context, job domain.Job) error
	GetJob(ctx context.Context, jobID string) (domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

// SubmissionRepository stores finalized attempts. CreateSubmission returns
// domain.ErrAlreadySubmitted when the (job, candidate) pair already has a submission.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub domain.Submission) error
	ListByJob(ctx context.Context, jobID string) ([]domain.Submission, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.Submission, error)
	HasSubmitted(ctx context.Context, jobID, candidateID string) (bool, error)
	CountByJob(ctx context.Context, jobID string) (int, error)
}

// UserRepository stores accounts. CreateUser returns domain.ErrEmailTaken on duplicates.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// AttemptRepository abstracts where live attempts are kept (in-memory, Redis-claimed, etc).
type AttemptRepository interface {
	// GetOrCreate returns the live attempt for the pair, calling start only when none
	// exists. created reports whether start was used.
	GetOrCreate(ctx context.Context, jobID, candidateID string, start func() *Attempt) (attempt *Attempt, created bool, err error)
	Get(jobID, candidateID string) (*Attempt, bool)
	Delete(jobID, candidateID string)
}
