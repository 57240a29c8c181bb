package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnhub/internal/shared"
)

type mongoEnrollmentStore struct {
	col *mongo.Collection
}

func (s *mongoEnrollmentStore) Insert(ctx context.Context, enrollment *shared.Enrollment) error {
	_, err := s.col.InsertOne(ctx, enrollment)
	return translateError(err)
}

func (s *mongoEnrollmentStore) Find(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	var enrollment shared.Enrollment
	err := s.col.FindOne(ctx, bson.M{"user_id": userID, "course_id": courseID}).Decode(&enrollment)
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (s *mongoEnrollmentStore) ListByUser(ctx context.Context, userID string) ([]shared.Enrollment, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *mongoEnrollmentStore) ListByCourses(ctx context.Context, courseIDs []string) ([]shared.Enrollment, error) {
	if len(courseIDs) == 0 {
		return []shared.Enrollment{}, nil
	}
	return s.list(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
}

// list returns ledger entries most recently enrolled first.
func (s *mongoEnrollmentStore) list(ctx context.Context, filter bson.M) ([]shared.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	enrollments := []shared.Enrollment{}
	for cursor.Next(ctx) {
		var enrollment shared.Enrollment
		if err := cursor.Decode(&enrollment); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, cursor.Err()
}

func (s *mongoEnrollmentStore) UpdateProgress(ctx context.Context, id string, progress shared.Progress) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"progress": progress}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete force-sets the terminal state regardless of lecture progress.
func (s *mongoEnrollmentStore) Complete(ctx context.Context, id string, at time.Time) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":                    shared.StatusCompleted,
			"completed_at":              at,
			"progress.percent_complete": 100,
		}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoEnrollmentStore) Delete(ctx context.Context, userID, courseID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"user_id": userID, "course_id": courseID})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoEnrollmentStore) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}
