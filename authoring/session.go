// Package authoring holds the in-progress state of a post being written and
// persists it as a create-or-update.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurie/models"

	"github.com/google/uuid"
)

var (
	ErrMissingFields = errors.New("title and content are required")
	ErrBadStatus     = errors.New("status must be draft or published")
	ErrNotSignedIn   = errors.New("not signed in")
	ErrNotOwner      = errors.New("not the post owner")
	ErrNotFound      = errors.New("post not found")
)

// Routes the shell navigates to after a successful save.
const (
	RouteHome   = "/"
	RouteDrafts = "/draft"
)

// PostStore is the slice of the posts collection the authoring flow needs.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	ByID(ctx context.Context, postID string) (*models.Post, error)
	Delete(ctx context.Context, postID, authorID string) error
}

// Session carries the draft fields between edits. PostID is empty for a new
// post and set when editing an existing one.
type Session struct {
	Title    string
	Content  string
	Category string
	ImageURL string
	PostID   string

	store PostStore
}

func NewSession(store PostStore) *Session {
	return &Session{store: store}
}

// Save validates the draft and persists it with the given status. On
// success the local fields are cleared and the route to navigate to is
// returned: home for published, the drafts listing otherwise. On failure
// the fields are left intact so the author can retry.
func (s *Session) Save(ctx context.Context, author *models.User, status string) (string, error) {
	if author == nil {
		return "", ErrNotSignedIn
	}
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Content) == "" {
		return "", ErrMissingFields
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return "", ErrBadStatus
	}

	now := time.Now()

	if s.PostID == "" {
		post := &models.Post{
			PostID:    newPostID(),
			Title:     s.Title,
			Content:   s.Content,
			Status:    status,
			Category:  s.Category,
			ImageURL:  s.ImageURL,
			Author:    author.Email,
			AuthorID:  author.UserID,
			Likes:     []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Insert(ctx, post); err != nil {
			return "", fmt.Errorf("failed to save post: %w", err)
		}
	} else {
		existing, err := s.store.ByID(ctx, s.PostID)
		if err != nil {
			return "", err
		}
		if existing.AuthorID != author.UserID {
			return "", ErrNotOwner
		}
		existing.Title = s.Title
		existing.Content = s.Content
		existing.Status = status
		existing.Category = s.Category
		if s.ImageURL != "" {
			existing.ImageURL = s.ImageURL
		}
		existing.UpdatedAt = now
		if err := s.store.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("failed to save post: %w", err)
		}
	}

	s.Title, s.Content, s.Category, s.ImageURL, s.PostID = "", "", "", "", ""

	if status == models.StatusPublished {
		return RouteHome, nil
	}
	return RouteDrafts, nil
}

func newPostID() string {
	return "p" + uuid.NewString()
}
