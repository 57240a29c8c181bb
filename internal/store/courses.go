package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnhub/internal/shared"
)

type mongoCourseStore struct {
	col *mongo.Collection
}

func (s *mongoCourseStore) Insert(ctx context.Context, course *shared.Course) error {
	_, err := s.col.InsertOne(ctx, course)
	return translateError(err)
}

func (s *mongoCourseStore) FindByID(ctx context.Context, id string) (*shared.Course, error) {
	var course shared.Course
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		return nil, translateError(err)
	}
	return &course, nil
}

func (s *mongoCourseStore) FindByIDs(ctx context.Context, ids []string) (map[string]*shared.Course, error) {
	result := make(map[string]*shared.Course, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var course shared.Course
		if err := cursor.Decode(&course); err != nil {
			return nil, err
		}
		c := course
		result[c.ID] = &c
	}
	return result, cursor.Err()
}

func (s *mongoCourseStore) ListPublished(ctx context.Context) ([]shared.Course, error) {
	return s.list(ctx, bson.M{"is_published": true})
}

func (s *mongoCourseStore) ListByEducator(ctx context.Context, educatorID string) ([]shared.Course, error) {
	return s.list(ctx, bson.M{"educator_id": educatorID})
}

// list runs a filtered find sorted newest first.
func (s *mongoCourseStore) list(ctx context.Context, filter bson.M) ([]shared.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	courses := []shared.Course{}
	for cursor.Next(ctx) {
		var course shared.Course
		if err := cursor.Decode(&course); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, cursor.Err()
}

func (s *mongoCourseStore) Update(ctx context.Context, course *shared.Course) error {
	course.UpdatedAt = time.Now()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": course.ID}, course)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCourseStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRating upserts one student's rating: an existing entry for the user is
// replaced, otherwise a new one is appended.
func (s *mongoCourseStore) SetRating(ctx context.Context, courseID, userID string, rating int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": courseID, "ratings.user_id": userID},
		bson.M{"$set": bson.M{"ratings.$.rating": rating}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = s.col.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$push": bson.M{"ratings": shared.Rating{UserID: userID, Rating: rating}}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCourseStore) AddEnrolledStudent(ctx context.Context, courseID, userID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$addToSet": bson.M{"enrolled_students": userID}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCourseStore) RemoveEnrolledStudent(ctx context.Context, courseID, userID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$pull": bson.M{"enrolled_students": userID}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
