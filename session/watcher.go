package session

import (
	"sync"

	"aurie/models"
)

// Watcher tracks the current signed-in user. It stays in the loading state
// until the first auth event arrives; after that every event replaces the
// current user (nil on sign-out). A dropped event leaves the last known
// user in place, matching the no-retry contract of the auth stream.
type Watcher struct {
	mu      sync.RWMutex
	current *models.User
	loading bool

	cancel func()
	done   chan struct{}
}

func NewWatcher(b *Broker) *Watcher {
	ch, cancel := b.Subscribe()
	w := &Watcher{
		loading: true,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		for ev := range ch {
			w.mu.Lock()
			w.current = ev.User
			w.loading = false
			w.mu.Unlock()
		}
	}()

	return w
}

// Current returns the signed-in user (nil when signed out) and whether the
// watcher is still waiting for its first auth event.
func (w *Watcher) Current() (*models.User, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current, w.loading
}

// Close cancels the underlying subscription and waits for the consumer
// goroutine to drain.
func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}
