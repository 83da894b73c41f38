// Package livequery keeps continuously updated result sets open against the
// document store. Every emission is a full replacement snapshot: consumers
// drop whatever they held and render the new sequence.
package livequery

import (
	"context"
	"sync"
)

const (
	ColPosts    = "posts"
	ColComments = "comments"
	ColUsers    = "users"
)

type subscription struct {
	collection string
	refresh    func(ctx context.Context)
	closed     bool
}

// Manager owns every live subscription, keyed by collection. Writers call
// Notify after a mutation; the change-stream watchers call it for mutations
// made elsewhere.
type Manager struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

func New() *Manager {
	return &Manager{
		subs: make(map[string][]*subscription),
	}
}

// add registers a subscription and kicks off its initial snapshot. onClose
// runs under the manager lock when the subscription is cancelled, so closing
// the consumer channel there can never race a delivery.
func (m *Manager) add(sub *subscription, onClose func()) func() {
	m.mu.Lock()
	m.subs[sub.collection] = append(m.subs[sub.collection], sub)
	m.mu.Unlock()

	go sub.refresh(context.Background())

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub.closed {
			return
		}
		sub.closed = true
		list := m.subs[sub.collection]
		for i, s := range list {
			if s == sub {
				m.subs[sub.collection] = append(list[:i], list[i+1:]...)
				break
			}
		}
		onClose()
	}

	return cancel
}

// deliver runs send under the manager lock unless the subscription has been
// torn down. No emission ever reaches a cancelled consumer.
func (m *Manager) deliver(sub *subscription, send func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.closed {
		return
	}
	send()
}

// Notify re-emits a fresh snapshot to every subscription on the collection.
func (m *Manager) Notify(ctx context.Context, collection string) {
	m.mu.Lock()
	subs := append([]*subscription(nil), m.subs[collection]...)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.refresh(ctx)
	}
}

// replace swaps the buffered snapshot for the latest one without blocking.
// Subscription channels have capacity 1; a consumer that has not drained the
// previous snapshot only ever sees the newest state.
func replace[T any](ch chan T, snap T) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
