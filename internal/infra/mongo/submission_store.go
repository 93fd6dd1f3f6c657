package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hiring-contest-service/internal/domain"
)

// SubmissionStore relies on the job_candidate_unique index created by EnsureIndexes.
type SubmissionStore struct {
	collection *mongo.Collection
}

func NewSubmissionStore(db *mongo.Database) *SubmissionStore {
	return &SubmissionStore{collection: db.Collection(submissionsCollection)}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, sub domain.Submission) error {
	if sub.Answers == nil {
		sub.Answers = []domain.Answer{}
	}
	if _, err := s.collection.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadySubmitted
		}
		return errors.Wrap(err, "insert submission")
	}
	return nil
}

func (s *SubmissionStore) ListByJob(ctx context.Context, jobID string) ([]domain.Submission, error) {
	return s.find(ctx, bson.M{"jobId": jobID})
}

func (s *SubmissionStore) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Submission, error) {
	return s.find(ctx, bson.M{"candidateId": candidateID})
}

func (s *SubmissionStore) HasSubmitted(ctx context.Context, jobID, candidateID string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"jobId": jobID, "candidateId": candidateID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count submissions")
	}
	return n > 0, nil
}

func (s *SubmissionStore) CountByJob(ctx context.Context, jobID string) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"jobId": jobID})
	if err != nil {
		return 0, errors.Wrap(err, "count submissions")
	}
	return int(n), nil
}

func (s *SubmissionStore) find(ctx context.Context, filter bson.M) ([]domain.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submissionTime", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find submissions")
	}
	defer cursor.Close(ctx)

	subs := make([]domain.Submission, 0)
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, errors.Wrap(err, "decode submissions")
	}
	return subs, nil
}
