package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hiring-contest-service/internal/domain"
)

// JobStore keeps one document per job, trials embedded.
type JobStore struct {
	collection *mongo.Collection
}

func NewJobStore(db *mongo.Database) *JobStore {
	return &JobStore{collection: db.Collection(jobsCollection)}
}

func (s *JobStore) CreateJob(ctx context.Context, job domain.Job) error {
	if _, err := s.collection.InsertOne(ctx, job); err != nil {
		return errors.Wrap(err, "insert job")
	}
	return nil
}

func (s *JobStore) GetJob(ctx context.Context, jobID string) (domain.Job, error) {
	return s.LoadJob(ctx, jobID)
}

func (s *JobStore) LoadJob(ctx context.Context, jobID string) (domain.Job, error) {
	var job domain.Job
	err := s.collection.FindOne(ctx, bson.M{"_id": jobID}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Job{}, domain.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, errors.Wrap(err, "find job")
	}
	return job, nil
}

// ListJobs returns jobs oldest first.
func (s *JobStore) ListJobs(ctx context.Context) ([]domain.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find jobs")
	}
	defer cursor.Close(ctx)

	jobs := make([]domain.Job, 0)
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, errors.Wrap(err, "decode jobs")
	}
	return jobs, nil
}
