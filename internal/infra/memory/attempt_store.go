package memory

import (
	"context"
	"sync"

	"hiring-contest-service/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) GetOrCreate(_ context.Context, jobID, candidateID string, start func() *app.Attempt) (*app.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := AttemptKey(jobID, candidateID)
	if attempt, ok := s.attempts[key]; ok {
		return attempt, false, nil
	}
	attempt := start()
	s.attempts[key] = attempt
	return attempt, true, nil
}

func (s *AttemptStore) Get(jobID, candidateID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[AttemptKey(jobID, candidateID)]
	return attempt, ok
}

func (s *AttemptStore) Delete(jobID, candidateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, AttemptKey(jobID, candidateID))
}

// Len reports the number of live attempts.
func (s *AttemptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}

// AttemptKey identifies the attempt of one candidate on one job.
func AttemptKey(jobID, candidateID string) string {
	return "attempt:" + jobID + ":" + candidateID
}
