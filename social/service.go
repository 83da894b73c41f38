// Package social maintains the bidirectional follow graph: if A is in B's
// following set, B must be in A's followers set. Toggle is the sole writer
// of both sides.
package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"aurie/models"
	"aurie/utils"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
	ErrNotSignedIn  = errors.New("not signed in")
	ErrMissingEmail = errors.New("target email required")
)

// UserStore is the slice of the users collection the follow graph needs.
type UserStore interface {
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	// SetFollowing adds or removes targetID in userID's following set.
	SetFollowing(ctx context.Context, userID, targetID string, add bool) error
	// SetFollowers adds or removes viewerID in userID's followers set.
	SetFollowers(ctx context.Context, userID, viewerID string, add bool) error
}

type Service struct {
	store UserStore
	cache *RelationCache
}

func NewService(store UserStore, cache *RelationCache) *Service {
	return &Service{store: store, cache: cache}
}

// Toggle flips the follow relation between the viewer and the author behind
// targetEmail and returns the new state. Both sides of the relation are
// written; the writes are idempotent set operations, so the second one is
// retried once on failure before the asymmetry is surfaced in the log for
// reconciliation on next load.
func (s *Service) Toggle(ctx context.Context, viewer *models.User, targetEmail string) (bool, error) {
	if viewer == nil {
		return false, ErrNotSignedIn
	}
	if targetEmail == "" {
		return false, ErrMissingEmail
	}
	if viewer.Email == targetEmail {
		return false, ErrSelfFollow
	}

	target, err := s.store.ByEmail(ctx, targetEmail)
	if errors.Is(err, ErrNotFound) {
		// The author has published but never logged a profile: create the
		// record on the fly with the viewer already following.
		target = &models.User{
			UserID:    newUserID(),
			Username:  utils.UsernameFromEmail(targetEmail),
			Email:     targetEmail,
			Followers: []string{viewer.UserID},
			JoinedAt:  time.Now(),
		}
		if err := s.store.Insert(ctx, target); err != nil {
			return false, fmt.Errorf("failed to create target profile: %w", err)
		}
		if err := s.ensureViewer(ctx, viewer); err != nil {
			return false, err
		}
		// Seed the viewer's cached lists from the store first: a fresh
		// cache entry must hold the whole relation, not just this target.
		if _, err := s.isFollowing(ctx, viewer.UserID, target.UserID); err != nil {
			return false, err
		}
		if err := s.store.SetFollowing(ctx, viewer.UserID, target.UserID, true); err != nil {
			return false, fmt.Errorf("failed to update follows: %w", err)
		}
		s.cache.Apply(ToggleEvent{ViewerID: viewer.UserID, TargetID: target.UserID, Followed: true})
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve target: %w", err)
	}

	if err := s.ensureViewer(ctx, viewer); err != nil {
		return false, err
	}

	following, err := s.isFollowing(ctx, viewer.UserID, target.UserID)
	if err != nil {
		return false, err
	}
	add := !following

	if err := s.store.SetFollowing(ctx, viewer.UserID, target.UserID, add); err != nil {
		return following, fmt.Errorf("failed to update follows: %w", err)
	}
	if err := s.store.SetFollowers(ctx, target.UserID, viewer.UserID, add); err != nil {
		// Retry once: $addToSet/$pull are idempotent.
		if err2 := s.store.SetFollowers(ctx, target.UserID, viewer.UserID, add); err2 != nil {
			log.Printf("social: follow graph asymmetric, %s missing from followers of %s: %v", viewer.UserID, target.UserID, err2)
		}
	}

	s.cache.Apply(ToggleEvent{ViewerID: viewer.UserID, TargetID: target.UserID, Followed: add})
	return add, nil
}

// ensureViewer self-heals a missing viewer profile before touching
// relations.
func (s *Service) ensureViewer(ctx context.Context, viewer *models.User) error {
	_, err := s.store.ByID(ctx, viewer.UserID)
	if errors.Is(err, ErrNotFound) {
		u := &models.User{
			UserID:   viewer.UserID,
			Username: viewer.Username,
			Email:    viewer.Email,
			JoinedAt: time.Now(),
		}
		if err := s.store.Insert(ctx, u); err != nil {
			return fmt.Errorf("failed to create viewer profile: %w", err)
		}
		return nil
	}
	return err
}

// isFollowing prefers the cached follow list; the store is only consulted
// when the viewer has no cached state yet.
func (s *Service) isFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	if following, ok := s.cache.IsFollowing(viewerID, targetID); ok {
		return following, nil
	}
	u, err := s.store.ByID(ctx, viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to load viewer: %w", err)
	}
	s.cache.Reconcile(viewerID, models.FollowList{
		UserID:    u.UserID,
		Followers: u.Followers,
		Following: u.Following,
	})
	return utils.Contains(u.Following, targetID), nil
}

func newUserID() string {
	return "u" + uuid.NewString()
}
