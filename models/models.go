package models

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	Name          string    `json:"name,omitempty" bson:"name,omitempty"`
	Bio           string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Followers     []string  `json:"followers,omitempty" bson:"followers,omitempty"`
	Following     []string  `json:"following,omitempty" bson:"following,omitempty"`
	JoinedAt      time.Time `json:"joined_at" bson:"joined_at"`
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	RefreshToken  string    `json:"-" bson:"refreshtoken,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refreshexp,omitempty"`
}

type Post struct {
	PostID     string    `json:"postid" bson:"postid"`
	Title      string    `json:"title" bson:"title"`
	Content    string    `json:"content" bson:"content"`
	Status     string    `json:"status" bson:"status"`
	Category   string    `json:"category,omitempty" bson:"category,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty" bson:"imageurl,omitempty"`
	Author     string    `json:"author" bson:"author"`
	AuthorID   string    `json:"authorid" bson:"authorid"`
	Likes      []string  `json:"likes" bson:"likes"`
	LikesCount int       `json:"likesCount,omitempty" bson:"-"`
	ReadTime   int       `json:"readTime,omitempty" bson:"-"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

type Comment struct {
	CommentID string    `json:"commentid" bson:"commentid"`
	PostID    string    `json:"postid" bson:"postid"`
	Author    string    `json:"author" bson:"author"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// FollowList is the social-graph projection of a user document.
type FollowList struct {
	UserID    string   `json:"userid" bson:"userid"`
	Followers []string `json:"followers,omitempty" bson:"followers,omitempty"`
	Following []string `json:"following,omitempty" bson:"following,omitempty"`
}

// UserProfileResponse is the payload for the profile page.
type UserProfileResponse struct {
	UserID         string    `json:"userid"`
	Username       string    `json:"username"`
	Name           string    `json:"name,omitempty"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
	IsFollowing    bool      `json:"is_following"`
	FollowersCount int       `json:"followerscount"`
	FollowingCount int       `json:"followscount"`
	Posts          []Post    `json:"posts"`
}
