package authoring

import (
	"context"
	"errors"
	"testing"

	"aurie/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPosts struct {
	posts      map[string]*models.Post
	insertErr  error
	updateErr  error
	insertions int
	updates    int
}

func newMemPosts() *memPosts {
	return &memPosts{posts: make(map[string]*models.Post)}
}

func (s *memPosts) Insert(_ context.Context, p *models.Post) error {
	s.insertions++
	if s.insertErr != nil {
		return s.insertErr
	}
	cp := *p
	s.posts[p.PostID] = &cp
	return nil
}

func (s *memPosts) Update(_ context.Context, p *models.Post) error {
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.posts[p.PostID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.posts[p.PostID] = &cp
	return nil
}

func (s *memPosts) ByID(_ context.Context, postID string) (*models.Post, error) {
	p, ok := s.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memPosts) Delete(_ context.Context, postID, authorID string) error {
	p, ok := s.posts[postID]
	if !ok || p.AuthorID != authorID {
		return ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}

var author = &models.User{UserID: "u1", Username: "ada", Email: "ada@x.com"}

func TestSaveValidatesRequiredFields(t *testing.T) {
	store := newMemPosts()

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"empty title", "", "body"},
		{"empty content", "title", ""},
		{"whitespace title", "   ", "body"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(store)
			session.Title = tt.title
			session.Content = tt.content

			_, err := session.Save(context.Background(), author, models.StatusDraft)
			assert.ErrorIs(t, err, ErrMissingFields)
			// Validation failures must never reach the store.
			assert.Equal(t, 0, store.insertions)
			// Fields survive for retry.
			assert.Equal(t, tt.title, session.Title)
		})
	}
}

func TestSaveRejectsUnknownStatus(t *testing.T) {
	store := newMemPosts()
	session := NewSession(store)
	session.Title = "title"
	session.Content = "body"

	_, err := session.Save(context.Background(), author, "archived")
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Equal(t, 0, store.insertions)
}

func TestSavePublishNavigatesHome(t *testing.T) {
	store := newMemPosts()
	session := NewSession(store)
	session.Title = "My story"
	session.Content = "<p>hello</p>"
	session.Category = "tech"

	redirect, err := session.Save(context.Background(), author, models.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, RouteHome, redirect)

	require.Len(t, store.posts, 1)
	for _, p := range store.posts {
		assert.Equal(t, models.StatusPublished, p.Status)
		assert.Equal(t, "ada@x.com", p.Author)
		assert.Equal(t, "u1", p.AuthorID)
		assert.NotNil(t, p.Likes)
		assert.Empty(t, p.Likes)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	}

	// Draft fields cleared after a successful save.
	assert.Empty(t, session.Title)
	assert.Empty(t, session.Content)
	assert.Empty(t, session.Category)
}

func TestSaveDraftNavigatesToDrafts(t *testing.T) {
	session := NewSession(newMemPosts())
	session.Title = "wip"
	session.Content = "notes"

	redirect, err := session.Save(context.Background(), author, models.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, RouteDrafts, redirect)
}

func TestSaveKeepsFieldsOnStoreFailure(t *testing.T) {
	store := newMemPosts()
	store.insertErr = errors.New("backend down")

	session := NewSession(store)
	session.Title = "keep me"
	session.Content = "and me"

	_, err := session.Save(context.Background(), author, models.StatusPublished)
	require.Error(t, err)

	assert.Equal(t, "keep me", session.Title)
	assert.Equal(t, "and me", session.Content)
}

func TestSaveEditUpdatesExistingPost(t *testing.T) {
	store := newMemPosts()
	store.posts["p1"] = &models.Post{
		PostID:   "p1",
		Title:    "old",
		Content:  "old body",
		Status:   models.StatusDraft,
		AuthorID: "u1",
		Author:   "ada@x.com",
		Likes:    []string{"fan@x.com"},
	}

	session := NewSession(store)
	session.PostID = "p1"
	session.Title = "new"
	session.Content = "new body"

	redirect, err := session.Save(context.Background(), author, models.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, RouteHome, redirect)

	updated := store.posts["p1"]
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, models.StatusPublished, updated.Status)
	// Edits never reset the likes set.
	assert.Equal(t, []string{"fan@x.com"}, updated.Likes)
	assert.Equal(t, 0, store.insertions)
	assert.Equal(t, 1, store.updates)
}

func TestSaveEditRejectsNonOwner(t *testing.T) {
	store := newMemPosts()
	store.posts["p1"] = &models.Post{PostID: "p1", Title: "t", Content: "c", AuthorID: "someone-else"}

	session := NewSession(store)
	session.PostID = "p1"
	session.Title = "hijack"
	session.Content = "attempt"

	_, err := session.Save(context.Background(), author, models.StatusPublished)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 0, store.updates)
}

func TestSaveRequiresAuthor(t *testing.T) {
	session := NewSession(newMemPosts())
	session.Title = "t"
	session.Content = "c"

	_, err := session.Save(context.Background(), nil, models.StatusDraft)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
