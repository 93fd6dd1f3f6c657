package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/config"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/infra/memory"
	mongostore "hiring-contest-service/internal/infra/mongo"
	"hiring-contest-service/internal/infra/postgres"
	rediscache "hiring-contest-service/internal/infra/redis"
)

// jobSource is what every driver's job store provides to the cache layer.
type jobSource interface {
	CreateJob(ctx context.Context, job domain.Job) error
	ListJobs(ctx context.Context) ([]domain.Job, error)
	LoadJob(ctx context.Context, jobID string) (domain.Job, error)
}

type storage struct {
	jobs        app.JobRepository
	submissions app.SubmissionRepository
	users       app.UserRepository
	attempts    app.AttemptRepository
	closers     []func()
	// keepAlive runs for the server's lifetime when attempts are claimed in Redis.
	keepAlive func(ctx context.Context)
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage builds the system of record for cfg.Storage.Driver, then fronts jobs and live
// attempts with Redis when it is configured, or with in-process equivalents otherwise.
func openStorage(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*storage, error) {
	st := &storage{}
	var (
		source jobSource
		loader memory.JobLoader
	)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, err
		}
		db := postgres.Open(cfg.Postgres.URL)
		st.closers = append(st.closers, func() { _ = db.Close() })
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			st.close()
			return nil, errors.Wrap(err, "connect pgx pool")
		}
		st.closers = append(st.closers, pool.Close)

		jobs := postgres.NewJobStore(db)
		source, loader = jobs, postgres.NewJobLoader(pool)
		st.submissions = postgres.NewSubmissionStore(db)
		st.users = postgres.NewUserStore(db)

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		})
		db := client.Database(cfg.Mongo.Database)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			st.close()
			return nil, err
		}
		jobs := mongostore.NewJobStore(db)
		source, loader = jobs, jobs
		st.submissions = mongostore.NewSubmissionStore(db)
		st.users = mongostore.NewUserStore(db)

	default:
		jobs := memory.NewJobStore(memory.SeedJobs(time.Now())...)
		source, loader = jobs, jobs
		st.submissions = memory.NewSubmissionStore()
		st.users = memory.NewUserStore()
		log.Info("memory storage: demo jobs seeded, nothing is persisted")
	}

	jobTTL := config.TTLDuration(cfg.Jobs.CacheTTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		st.jobs = memory.NewJobCache(source, loader, jobTTL)
		st.attempts = memory.NewAttemptStore()
		return st, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	st.closers = append(st.closers, func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		st.close()
		return nil, errors.Wrap(err, "ping redis")
	}
	st.jobs = rediscache.NewJobCache(client, source, loader, jobTTL, log)
	attempts := rediscache.NewAttemptStore(client, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour), log)
	st.attempts = attempts
	st.keepAlive = attempts.KeepAlive
	return st, nil
}
