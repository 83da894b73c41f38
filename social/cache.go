package social

import (
	"sync"

	"aurie/models"
)

// ToggleEvent is the optimistic mutation applied locally before the backend
// confirms a follow toggle.
type ToggleEvent struct {
	ViewerID string
	TargetID string
	Followed bool
}

type relation struct {
	following map[string]bool
	followers map[string]bool
}

// RelationCache holds each viewer's follow lists as last seen. Apply mutates
// it optimistically on a toggle; Reconcile replaces it wholesale when an
// authoritative snapshot arrives. The authoritative snapshot always wins.
type RelationCache struct {
	mu       sync.RWMutex
	byViewer map[string]*relation
}

func NewRelationCache() *RelationCache {
	return &RelationCache{byViewer: make(map[string]*relation)}
}

func (c *RelationCache) rel(viewerID string) *relation {
	r, ok := c.byViewer[viewerID]
	if !ok {
		r = &relation{following: make(map[string]bool), followers: make(map[string]bool)}
		c.byViewer[viewerID] = r
	}
	return r
}

// Apply records an optimistic toggle for the viewer.
func (c *RelationCache) Apply(ev ToggleEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.rel(ev.ViewerID)
	if ev.Followed {
		r.following[ev.TargetID] = true
	} else {
		delete(r.following, ev.TargetID)
	}
}

// Reconcile replaces the viewer's cached lists with an authoritative
// snapshot, discarding any optimistic state.
func (c *RelationCache) Reconcile(viewerID string, list models.FollowList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &relation{following: make(map[string]bool), followers: make(map[string]bool)}
	for _, id := range list.Following {
		r.following[id] = true
	}
	for _, id := range list.Followers {
		r.followers[id] = true
	}
	c.byViewer[viewerID] = r
}

// IsFollowing reports the cached relation. ok is false when the viewer has
// no cached state yet.
func (c *RelationCache) IsFollowing(viewerID, targetID string) (following, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byViewer[viewerID]
	if !ok {
		return false, false
	}
	return r.following[targetID], true
}

// Following returns the viewer's cached following ids.
func (c *RelationCache) Following(viewerID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byViewer[viewerID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.following))
	for id := range r.following {
		out = append(out, id)
	}
	return out
}
