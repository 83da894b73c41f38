// Package session carries the auth event stream and the current-user state
// derived from it.
package session

import (
	"sync"

	"aurie/models"
)

// Event is one emission of the auth stream. User is nil on sign-out.
type Event struct {
	User *models.User
}

// Broker fans auth events out to subscribers. Sign-in and sign-out handlers
// publish; watchers subscribe.
type Broker struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewBroker() *Broker {
	return &Broker{}
}

// Subscribe returns a channel of auth events and a cancel function. The
// channel is closed by cancel; subscribers must call it on teardown.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 1)
	b.subs = append(b.subs, ch)

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, cancel
}

// Publish delivers ev to every subscriber. A slow subscriber keeps only the
// latest event: stale buffered events are replaced, never waited on.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
			select {
			case <-sub:
			default:
			}
			sub <- ev
		}
	}
}
