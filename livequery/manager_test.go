package livequery

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"aurie/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSubscribe wires a subscription whose snapshots come from the given
// fetch func instead of the store.
func testSubscribe(m *Manager, collection string, fetch func() []models.Post) (<-chan []models.Post, func()) {
	ch := make(chan []models.Post, 1)
	sub := &subscription{collection: collection}
	sub.refresh = func(ctx context.Context) {
		snap := fetch()
		m.deliver(sub, func() { replace(ch, snap) })
	}
	return ch, m.add(sub, func() { close(ch) })
}

func TestManagerInitialSnapshot(t *testing.T) {
	m := New()
	posts := []models.Post{{PostID: "p1", Title: "one"}}

	ch, cancel := testSubscribe(m, ColPosts, func() []models.Post { return posts })
	defer cancel()

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, "p1", snap[0].PostID)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for initial snapshot")
	}
}

func TestManagerNotifyReEmitsFullSnapshot(t *testing.T) {
	m := New()
	var generation atomic.Int32
	fetch := func() []models.Post {
		n := generation.Load()
		out := make([]models.Post, n)
		for i := range out {
			out[i] = models.Post{PostID: "p", Title: "t"}
		}
		return out
	}

	ch, cancel := testSubscribe(m, ColPosts, fetch)
	defer cancel()

	<-ch // initial (empty) snapshot

	generation.Store(3)
	m.Notify(context.Background(), ColPosts)

	select {
	case snap := <-ch:
		// Full replacement: the whole new result set, not a diff.
		assert.Len(t, snap, 3)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for re-emission")
	}
}

func TestManagerNotifyOtherCollectionIsIgnored(t *testing.T) {
	m := New()
	var calls atomic.Int32
	fetch := func() []models.Post {
		calls.Add(1)
		return nil
	}

	ch, cancel := testSubscribe(m, ColPosts, fetch)
	defer cancel()

	<-ch
	require.EqualValues(t, 1, calls.Load())

	m.Notify(context.Background(), ColComments)
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestManagerCancelStopsEmissions(t *testing.T) {
	m := New()
	ch, cancel := testSubscribe(m, ColPosts, func() []models.Post { return nil })

	<-ch
	cancel()

	// The channel must be closed and later notifications must not panic or
	// deliver into the torn-down subscription.
	m.Notify(context.Background(), ColPosts)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")

	m.mu.Lock()
	assert.Len(t, m.subs[ColPosts], 0)
	m.mu.Unlock()
}

func TestManagerCancelIsIdempotent(t *testing.T) {
	m := New()
	_, cancel := testSubscribe(m, ColPosts, func() []models.Post { return nil })

	cancel()
	cancel() // second call must be a no-op, not a double close
}

func TestManagerLatestSnapshotWins(t *testing.T) {
	m := New()
	var generation atomic.Int32
	fetch := func() []models.Post {
		n := int(generation.Add(1))
		out := make([]models.Post, n)
		for i := range out {
			out[i] = models.Post{PostID: "p"}
		}
		return out
	}

	ch, cancel := testSubscribe(m, ColPosts, fetch)
	defer cancel()

	// Let several notifications pile up without the consumer reading.
	time.Sleep(10 * time.Millisecond)
	m.Notify(context.Background(), ColPosts)
	m.Notify(context.Background(), ColPosts)

	// The buffered emission is the newest snapshot, not a stale one.
	select {
	case snap := <-ch:
		assert.Len(t, snap, 3)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
}

func TestManagerMultipleSubscribers(t *testing.T) {
	m := New()

	ch1, cancel1 := testSubscribe(m, ColPosts, func() []models.Post { return []models.Post{{PostID: "a"}} })
	ch2, cancel2 := testSubscribe(m, ColPosts, func() []models.Post { return []models.Post{{PostID: "b"}} })
	defer cancel2()

	<-ch1
	<-ch2

	m.mu.Lock()
	assert.Len(t, m.subs[ColPosts], 2)
	m.mu.Unlock()

	cancel1()

	m.mu.Lock()
	assert.Len(t, m.subs[ColPosts], 1)
	m.mu.Unlock()
}
