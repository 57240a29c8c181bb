package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"learnhub/internal/shared"
)

type mongoUserStore struct {
	col *mongo.Collection
}

func (s *mongoUserStore) Insert(ctx context.Context, user *shared.User) error {
	_, err := s.col.InsertOne(ctx, user)
	return translateError(err)
}

func (s *mongoUserStore) FindByID(ctx context.Context, id string) (*shared.User, error) {
	var user shared.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*shared.User, error) {
	var user shared.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *mongoUserStore) FindByIDs(ctx context.Context, ids []string) (map[string]*shared.User, error) {
	result := make(map[string]*shared.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user shared.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		u := user
		result[u.ID] = &u
	}
	return result, cursor.Err()
}

func (s *mongoUserStore) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*shared.User, error) {
	set := bson.M{
		"profile_completed": true,
		"updated_at":        time.Now(),
	}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.ImageURL != nil {
		set["image_url"] = *update.ImageURL
	}
	if update.Expertise != nil {
		set["expertise"] = *update.Expertise
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, translateError(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *mongoUserStore) AddEnrolledCourse(ctx context.Context, userID, courseID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"enrolled_courses": courseID}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUserStore) RemoveEnrolledCourse(ctx context.Context, userID, courseID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"enrolled_courses": courseID}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
