package authoring

import (
	"context"

	"aurie/db"
	"aurie/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPosts backs authoring with the posts collection.
type MongoPosts struct{}

func NewMongoPosts() *MongoPosts {
	return &MongoPosts{}
}

func (MongoPosts) Insert(ctx context.Context, p *models.Post) error {
	_, err := db.PostsCollection.InsertOne(ctx, p)
	return err
}

func (MongoPosts) Update(ctx context.Context, p *models.Post) error {
	update := bson.M{"$set": bson.M{
		"title":      p.Title,
		"content":    p.Content,
		"status":     p.Status,
		"category":   p.Category,
		"imageurl":   p.ImageURL,
		"updated_at": p.UpdatedAt,
	}}
	res, err := db.PostsCollection.UpdateOne(ctx, bson.M{"postid": p.PostID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (MongoPosts) ByID(ctx context.Context, postID string) (*models.Post, error) {
	var p models.Post
	err := db.PostsCollection.FindOne(ctx, bson.M{"postid": postID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (MongoPosts) Delete(ctx context.Context, postID, authorID string) error {
	res, err := db.PostsCollection.DeleteOne(ctx, bson.M{"postid": postID, "authorid": authorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
