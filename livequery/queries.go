package livequery

import (
	"context"
	"log"
	"time"

	"aurie/db"
	"aurie/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostQuery selects which posts a subscription tracks. Zero fields are not
// filtered on. Posts are ordered by creation time, newest first unless
// Oldest is set.
type PostQuery struct {
	Status   string
	Author   string // author email
	AuthorID string
	Category string
	Oldest   bool
}

func (q PostQuery) filter() bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Author != "" {
		filter["author"] = q.Author
	}
	if q.AuthorID != "" {
		filter["authorid"] = q.AuthorID
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	return filter
}

// SubscribePosts opens a live query on the posts collection. The returned
// channel carries full snapshots; the cancel func must be called on
// consumer teardown.
func (m *Manager) SubscribePosts(q PostQuery) (<-chan []models.Post, func()) {
	ch := make(chan []models.Post, 1)
	sub := &subscription{collection: ColPosts}
	sub.refresh = func(ctx context.Context) {
		posts, err := FetchPosts(ctx, q)
		if err != nil {
			log.Printf("livequery: posts snapshot failed: %v", err)
			posts = []models.Post{}
		}
		m.deliver(sub, func() { replace(ch, posts) })
	}
	cancel := m.add(sub, func() { close(ch) })
	return ch, cancel
}

// SubscribeComments opens a live query on a post's comments, ordered oldest
// first.
func (m *Manager) SubscribeComments(postID string) (<-chan []models.Comment, func()) {
	ch := make(chan []models.Comment, 1)
	sub := &subscription{collection: ColComments}
	sub.refresh = func(ctx context.Context) {
		comments, err := FetchComments(ctx, postID)
		if err != nil {
			log.Printf("livequery: comments snapshot failed: %v", err)
			comments = []models.Comment{}
		}
		m.deliver(sub, func() { replace(ch, comments) })
	}
	cancel := m.add(sub, func() { close(ch) })
	return ch, cancel
}

// SubscribeFollowList opens a live query on one user's follow graph.
func (m *Manager) SubscribeFollowList(userID string) (<-chan models.FollowList, func()) {
	ch := make(chan models.FollowList, 1)
	sub := &subscription{collection: ColUsers}
	sub.refresh = func(ctx context.Context) {
		list, err := FetchFollowList(ctx, userID)
		if err != nil {
			log.Printf("livequery: follow list snapshot failed: %v", err)
			list = models.FollowList{UserID: userID}
		}
		m.deliver(sub, func() { replace(ch, list) })
	}
	cancel := m.add(sub, func() { close(ch) })
	return ch, cancel
}

func FetchPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	order := -1
	if q.Oldest {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}})

	cursor, err := db.PostsCollection.Find(ctx, q.filter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func FetchComments(ctx context.Context, postID string) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := db.CommentsCollection.Find(ctx, bson.M{"postid": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func FetchFollowList(ctx context.Context, userID string) (models.FollowList, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var list models.FollowList
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&list)
	if err == mongo.ErrNoDocuments {
		return models.FollowList{UserID: userID}, nil
	}
	if err != nil {
		return models.FollowList{UserID: userID}, err
	}
	return list, nil
}
