package livequery

import (
	"context"
	"log"

	"aurie/db"

	"go.mongodb.org/mongo-driver/mongo"
)

// Watch tails the change stream of each collection and re-emits snapshots on
// every change. Change streams need a replica set; without one the watchers
// log and return, and subscriptions are refreshed only by write
// notifications from this process.
func (m *Manager) Watch(ctx context.Context) {
	go m.watchCollection(ctx, db.PostsCollection, ColPosts)
	go m.watchCollection(ctx, db.CommentsCollection, ColComments)
	go m.watchCollection(ctx, db.UserCollection, ColUsers)
}

func (m *Manager) watchCollection(ctx context.Context, coll *mongo.Collection, name string) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		log.Printf("livequery: change stream on %s unavailable: %v", name, err)
		return
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		m.Notify(ctx, name)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Printf("livequery: change stream on %s ended: %v", name, err)
	}
}
