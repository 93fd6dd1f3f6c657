package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	jobsCollection        = "jobs"
	submissionsCollection = "submissions"
	usersCollection       = "users"
)

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique ones back
// domain.ErrAlreadySubmitted and domain.ErrEmailTaken.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(submissionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jobId", Value: 1}, {Key: "candidateId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("job_candidate_unique"),
		},
		{Keys: bson.D{{Key: "candidateId", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "submission indexes")
	}
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return errors.Wrap(err, "user indexes")
	}
	_, err = db.Collection(jobsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	})
	return errors.Wrap(err, "job indexes")
}
