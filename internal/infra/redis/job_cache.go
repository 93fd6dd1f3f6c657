package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"hiring-contest-service/internal/domain"
)

// JobLoader fetches a job from the system of record (e.g., Postgres or a document DB).
type JobLoader interface {
	LoadJob(ctx context.Context, jobID string) (domain.Job, error)
}

// JobWriter is the write and listing side of the system of record.
type JobWriter interface {
	CreateJob(ctx context.Context, job domain.Job) error
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

// JobCache caches whole jobs in Redis and falls back to a loader on a miss.
// Jobs are stored as JSON: SET job:{jobID} <json> EX ttl
// Cache errors never fail a read; the loader is the source of truth.
type JobCache struct {
	client *redis.Client
	store  JobWriter
	loader JobLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewJobCache(client *redis.Client, store JobWriter, loader JobLoader, ttl time.Duration, log logrus.FieldLogger) *JobCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &JobCache{
		client: client,
		store:  store,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *JobCache) CreateJob(ctx context.Context, job domain.Job) error {
	if err := r.store.CreateJob(ctx, job); err != nil {
		return err
	}
	r.put(ctx, job)
	return nil
}

func (r *JobCache) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return r.store.ListJobs(ctx)
}

func (r *JobCache) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	if job, ok := r.cached(ctx, jobID); ok {
		return job, nil
	}

	result, err, _ := r.sf.Do(jobID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if job, ok := r.cached(ctx, jobID); ok {
			return job, nil
		}
		job, err := r.loader.LoadJob(ctx, jobID)
		if err != nil {
			return domain.Job{}, err
		}
		r.put(ctx, job)
		return job, nil
	})
	if err != nil {
		return domain.Job{}, err
	}
	return result.(domain.Job), nil
}

func (r *JobCache) cached(ctx context.Context, jobID string) (domain.Job, bool) {
	raw, err := r.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).WithField("job_id", jobID).Warn("job cache read failed")
		}
		return domain.Job{}, false
	}
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		r.log.WithError(err).WithField("job_id", jobID).Warn("job cache entry corrupt")
		return domain.Job{}, false
	}
	return job, true
}

func (r *JobCache) put(ctx context.Context, job domain.Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, jobKey(job.ID), raw, r.ttlWithJitter()).Err(); err != nil {
		r.log.WithError(err).WithField("job_id", job.ID).Warn("job cache write failed")
	}
}

func jobKey(jobID string) string {
	return "job:" + jobID
}

func (r *JobCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
