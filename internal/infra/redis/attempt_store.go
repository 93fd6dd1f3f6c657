package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
)

// releaseClaim deletes the claim only while this instance still owns it.
var releaseClaim = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// renewClaim extends the claim only while this instance still owns it.
var renewClaim = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Attempts, with their countdowns, live in a local map on the instance that started them.
//   - Redis holds a claim per (job, candidate) so a second instance cannot start a parallel
//     attempt: SET attempt:{jobID}:{candidateID} {instanceID} NX EX ttl
//   - KeepAlive renews the claims of local attempts, so untimed or long attempts keep them.
//   - The stored uniqueness constraint on submissions still backs this up if a claim expires.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	instance string
	log      logrus.FieldLogger

	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *AttemptStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		instance: uuid.NewString(),
		log:      log,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) GetOrCreate(ctx context.Context, jobID, candidateID string, start func() *app.Attempt) (*app.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := claimKey(jobID, candidateID)
	if attempt, ok := s.attempts[key]; ok {
		return attempt, false, nil
	}
	claimed, err := s.client.SetNX(ctx, key, s.instance, s.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "claim attempt")
	}
	if !claimed {
		return nil, false, domain.ErrAttemptInProgress
	}
	attempt := start()
	s.attempts[key] = attempt
	return attempt, true, nil
}

func (s *AttemptStore) Get(jobID, candidateID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[claimKey(jobID, candidateID)]
	return attempt, ok
}

func (s *AttemptStore) Delete(jobID, candidateID string) {
	key := claimKey(jobID, candidateID)
	s.mu.Lock()
	_, ok := s.attempts[key]
	delete(s.attempts, key)
	s.mu.Unlock()
	if !ok {
		return
	}
	// best-effort; the claim expires on its own otherwise
	if err := releaseClaim.Run(context.Background(), s.client, []string{key}, s.instance).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("release attempt claim failed")
	}
}

// Refresh renews the claim of every attempt held by this instance.
func (s *AttemptStore) Refresh(ctx context.Context) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.attempts))
	for key := range s.attempts {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	for _, key := range keys {
		renewed, err := renewClaim.Run(ctx, s.client, []string{key}, s.instance, s.ttl.Milliseconds()).Int()
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("renew attempt claim failed")
			continue
		}
		if renewed == 0 {
			s.log.WithField("key", key).Warn("attempt claim lost")
		}
	}
}

// KeepAlive refreshes claims at a third of the claim TTL until ctx ends.
func (s *AttemptStore) KeepAlive(ctx context.Context) {
	interval := s.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func claimKey(jobID, candidateID string) string {
	return "attempt:" + jobID + ":" + candidateID
}
