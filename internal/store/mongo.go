package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnhub/internal/shared"
)

// Collection names.
const (
	usersCollection       = "users"
	coursesCollection     = "courses"
	enrollmentsCollection = "enrollments"
)

// NewMongoStores builds the store bundle backed by MongoDB.
func NewMongoStores(client *mongo.Client, db *mongo.Database) *Stores {
	return &Stores{
		Users:       &mongoUserStore{col: db.Collection(usersCollection)},
		Courses:     &mongoCourseStore{col: db.Collection(coursesCollection)},
		Enrollments: &mongoEnrollmentStore{col: db.Collection(enrollmentsCollection)},
		Tx:          &mongoTransactor{client: client},
	}
}

// EnsureIndexes creates the indexes the data model relies on: the unique
// email index, the unique (user_id, course_id) ledger index, and the
// secondary lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	courseIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "educator_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_published", Value: 1}}},
	}
	if _, err := db.Collection(coursesCollection).Indexes().CreateMany(ctx, courseIndexes); err != nil {
		return fmt.Errorf("failed to create course indexes: %w", err)
	}

	enrollmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "course_id", Value: 1}}},
	}
	if _, err := db.Collection(enrollmentsCollection).Indexes().CreateMany(ctx, enrollmentIndexes); err != nil {
		return fmt.Errorf("failed to create enrollment indexes: %w", err)
	}

	return nil
}

// mongoTransactor wraps the shared transaction helper behind the Transactor
// interface. The session context is itself a context.Context, so stores
// called inside fn join the transaction transparently.
type mongoTransactor struct {
	client *mongo.Client
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return shared.WithTransaction(ctx, t.client, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

// translateError maps driver errors to the store sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
