package social

import (
	"context"

	"aurie/db"
	"aurie/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore backs the follow graph with the users collection.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (MongoStore) ByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (MongoStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (MongoStore) Insert(ctx context.Context, u *models.User) error {
	_, err := db.UserCollection.InsertOne(ctx, u)
	return err
}

func (MongoStore) SetFollowing(ctx context.Context, userID, targetID string, add bool) error {
	update := bson.M{"$addToSet": bson.M{"following": targetID}}
	if !add {
		update = bson.M{"$pull": bson.M{"following": targetID}}
	}
	_, err := db.UserCollection.UpdateOne(
		ctx,
		bson.M{"userid": userID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (MongoStore) SetFollowers(ctx context.Context, userID, viewerID string, add bool) error {
	update := bson.M{"$addToSet": bson.M{"followers": viewerID}}
	if !add {
		update = bson.M{"$pull": bson.M{"followers": viewerID}}
	}
	_, err := db.UserCollection.UpdateOne(
		ctx,
		bson.M{"userid": userID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
