package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"hiring-contest-service/internal/domain"
)

// JobLoader fetches a job from a backing store (e.g., Postgres or a document DB).
type JobLoader interface {
	LoadJob(ctx context.Context, jobID string) (domain.Job, error)
}

// JobWriter is the write and listing side of a job store.
type JobWriter interface {
	CreateJob(ctx context.Context, job domain.Job) error
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

// JobCache serves GetJob from memory with a TTL and falls back to a loader on a miss.
// Jobs never change after creation, so a cached copy never goes stale.
type JobCache struct {
	store  JobWriter
	loader JobLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedJob
}

type cachedJob struct {
	job       domain.Job
	expiresAt time.Time
}

func NewJobCache(store JobWriter, loader JobLoader, ttl time.Duration) *JobCache {
	return &JobCache{
		store:  store,
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedJob),
	}
}

func (r *JobCache) CreateJob(ctx context.Context, job domain.Job) error {
	if err := r.store.CreateJob(ctx, job); err != nil {
		return err
	}
	r.put(job, r.clock())
	return nil
}

func (r *JobCache) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return r.store.ListJobs(ctx)
}

func (r *JobCache) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[jobID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.job, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(jobID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[jobID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.job, nil
		}
		r.mu.RUnlock()

		job, err := r.loader.LoadJob(ctx, jobID)
		if err != nil {
			return domain.Job{}, err
		}
		r.put(job, now)
		return job, nil
	})
	if err != nil {
		return domain.Job{}, err
	}
	return result.(domain.Job), nil
}

func (r *JobCache) put(job domain.Job, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[job.ID] = cachedJob{job: job, expiresAt: now.Add(r.ttlWithJitterLocked())}
}

// ttlWithJitterLocked adds up to 10% jitter to spread expirations. r.mu must be held.
func (r *JobCache) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// JobStore is a map-backed job store (useful for tests/demos and the memory driver).
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewJobStore(jobs ...domain.Job) *JobStore {
	s := &JobStore{jobs: make(map[string]domain.Job, len(jobs))}
	for _, job := range jobs {
		s.jobs[job.ID] = job
	}
	return s
}

func (s *JobStore) CreateJob(_ context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *JobStore) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	return s.LoadJob(ctx, jobID)
}

func (s *JobStore) LoadJob(_ context.Context, jobID string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[jobID]; ok {
		return job, nil
	}
	return domain.Job{}, domain.ErrJobNotFound
}

// ListJobs returns jobs oldest first.
func (s *JobStore) ListJobs(_ context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
