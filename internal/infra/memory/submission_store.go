package memory

import (
	"context"
	"sync"

	"hiring-contest-service/internal/domain"
)

// SubmissionStore keeps submissions in insertion order and enforces one per candidate and job.
type SubmissionStore struct {
	mu    sync.RWMutex
	subs  []domain.Submission
	pairs map[string]struct{}
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{pairs: make(map[string]struct{})}
}

func (s *SubmissionStore) CreateSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := AttemptKey(sub.JobID, sub.CandidateID)
	if _, ok := s.pairs[key]; ok {
		return domain.ErrAlreadySubmitted
	}
	s.pairs[key] = struct{}{}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *SubmissionStore) ListByJob(_ context.Context, jobID string) ([]domain.Submission, error) {
	return s.filter(func(sub domain.Submission) bool { return sub.JobID == jobID }), nil
}

func (s *SubmissionStore) ListByCandidate(_ context.Context, candidateID string) ([]domain.Submission, error) {
	return s.filter(func(sub domain.Submission) bool { return sub.CandidateID == candidateID }), nil
}

func (s *SubmissionStore) HasSubmitted(_ context.Context, jobID, candidateID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pairs[AttemptKey(jobID, candidateID)]
	return ok, nil
}

func (s *SubmissionStore) CountByJob(ctx context.Context, jobID string) (int, error) {
	subs, err := s.ListByJob(ctx, jobID)
	return len(subs), err
}

func (s *SubmissionStore) filter(keep func(domain.Submission) bool) []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.subs {
		if keep(sub) {
			out = append(out, sub)
		}
	}
	return out
}
