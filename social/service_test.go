package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"aurie/models"
	"aurie/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory UserStore for exercising the toggle logic.
type memStore struct {
	users map[string]*models.User // by id

	failFollowers int // fail SetFollowers this many times
	followerCalls int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

func (s *memStore) ByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) Insert(_ context.Context, u *models.User) error {
	cp := *u
	s.users[u.UserID] = &cp
	return nil
}

func (s *memStore) SetFollowing(_ context.Context, userID, targetID string, add bool) error {
	u, ok := s.users[userID]
	if !ok {
		u = &models.User{UserID: userID, JoinedAt: time.Now()}
		s.users[userID] = u
	}
	u.Following = toggleMember(u.Following, targetID, add)
	return nil
}

func (s *memStore) SetFollowers(_ context.Context, userID, viewerID string, add bool) error {
	s.followerCalls++
	if s.failFollowers > 0 {
		s.failFollowers--
		return errors.New("write failed")
	}
	u, ok := s.users[userID]
	if !ok {
		u = &models.User{UserID: userID, JoinedAt: time.Now()}
		s.users[userID] = u
	}
	u.Followers = toggleMember(u.Followers, viewerID, add)
	return nil
}

func toggleMember(set []string, member string, add bool) []string {
	if add {
		if utils.Contains(set, member) {
			return set
		}
		return append(set, member)
	}
	out := set[:0]
	for _, m := range set {
		if m != member {
			out = append(out, m)
		}
	}
	return out
}

func newFixture() (*Service, *memStore, *RelationCache) {
	store := newMemStore()
	cache := NewRelationCache()
	return NewService(store, cache), store, cache
}

func TestToggleFollowCreatesSymmetricRelation(t *testing.T) {
	svc, store, _ := newFixture()
	ctx := context.Background()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}
	store.users["b"] = &models.User{UserID: "b", Email: "b@x.com"}

	following, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)

	// Symmetry: a follows b AND b is followed by a.
	assert.Contains(t, store.users["a"].Following, "b")
	assert.Contains(t, store.users["b"].Followers, "a")
}

func TestToggleTwiceRestoresOriginalState(t *testing.T) {
	svc, store, _ := newFixture()
	ctx := context.Background()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}
	store.users["b"] = &models.User{UserID: "b", Email: "b@x.com"}

	following, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)

	following, err = svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.False(t, following)

	assert.NotContains(t, store.users["a"].Following, "b")
	assert.NotContains(t, store.users["b"].Followers, "a")
}

func TestToggleCreatesMissingTargetProfile(t *testing.T) {
	svc, store, cache := newFixture()
	ctx := context.Background()

	// b@x.com has published posts but never logged a profile.
	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}

	following, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)

	target, err := store.ByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "b", target.Username)
	assert.Equal(t, []string{"a"}, target.Followers)

	assert.Contains(t, store.users["a"].Following, target.UserID)

	got, ok := cache.IsFollowing("a", target.UserID)
	assert.True(t, ok)
	assert.True(t, got)
}

func TestToggleMissingTargetKeepsExistingRelations(t *testing.T) {
	svc, store, cache := newFixture()
	ctx := context.Background()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com", Following: []string{"d"}}
	store.users["d"] = &models.User{UserID: "d", Email: "d@x.com", Followers: []string{"a"}}

	// Following a brand-new author must not reduce the viewer's cached
	// lists to just that author.
	following, err := svc.Toggle(ctx, viewer, "new@x.com")
	require.NoError(t, err)
	assert.True(t, following)

	got, ok := cache.IsFollowing("a", "d")
	require.True(t, ok)
	assert.True(t, got, "existing relation must survive the cache seed")

	// Toggling an author the viewer already follows now unfollows.
	following, err = svc.Toggle(ctx, viewer, "d@x.com")
	require.NoError(t, err)
	assert.False(t, following)
	assert.NotContains(t, store.users["a"].Following, "d")
	assert.NotContains(t, store.users["d"].Followers, "a")
}

func TestToggleSelfHealsMissingViewerProfile(t *testing.T) {
	svc, store, _ := newFixture()
	ctx := context.Background()

	store.users["b"] = &models.User{UserID: "b", Email: "b@x.com"}
	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}

	_, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)

	healed, err := store.ByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", healed.Email)
	assert.Contains(t, healed.Following, "b")
}

func TestToggleRejectsSelfFollow(t *testing.T) {
	svc, store, _ := newFixture()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}

	_, err := svc.Toggle(context.Background(), viewer, "a@x.com")
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.Empty(t, store.users["a"].Following)
}

func TestToggleRequiresViewer(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Toggle(context.Background(), nil, "b@x.com")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestToggleRetriesSecondWrite(t *testing.T) {
	svc, store, _ := newFixture()
	ctx := context.Background()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}
	store.users["b"] = &models.User{UserID: "b", Email: "b@x.com"}

	store.failFollowers = 1

	following, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)

	// The transient failure was retried and symmetry restored.
	assert.Equal(t, 2, store.followerCalls)
	assert.Contains(t, store.users["b"].Followers, "a")
}

func TestToggleUsesCachedRelation(t *testing.T) {
	svc, store, cache := newFixture()
	ctx := context.Background()

	viewer := &models.User{UserID: "a", Username: "a", Email: "a@x.com"}
	store.users["a"] = &models.User{UserID: "a", Email: "a@x.com"}
	store.users["b"] = &models.User{UserID: "b", Email: "b@x.com"}

	// Authoritative snapshot says a already follows b, even though the
	// store copy of the viewer document is stale.
	cache.Reconcile("a", models.FollowList{UserID: "a", Following: []string{"b"}})

	following, err := svc.Toggle(ctx, viewer, "b@x.com")
	require.NoError(t, err)
	assert.False(t, following, "toggle from cached following state must unfollow")
}
