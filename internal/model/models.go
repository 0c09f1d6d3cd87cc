package model

import "time"

// Role values as issued by the API.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account as returned by the API. List rows from
// /users include PostsCount; the session user carries Role.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
	PostsCount int       `json:"postsCount,omitempty"`
}

// Author is the embedded author object on posts and comments.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Post is a blog post DTO. List membership and ordering are entirely
// server-determined; the client never merges or re-sorts pages.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Published    bool      `json:"published"`
	Author       Author    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ThumbnailURL *string   `json:"thumbnailUrl,omitempty"`
	Category     *Category `json:"category,omitempty"`
	Tags         []Tag     `json:"tags,omitempty"`
}

// Comment belongs to a post. A nil ParentID marks a root comment;
// otherwise ParentID references the root it replies to (one level deep).
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
	ParentID  *string   `json:"parentId"`
}

// PostCount mirrors the API's `_count` relation object.
type PostCount struct {
	Posts int `json:"posts"`
}

// Category groups posts. Count is only present on admin list responses.
type Category struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Count *PostCount `json:"_count,omitempty"`
}

// Tag labels posts. Count is only present on admin list responses.
type Tag struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Count *PostCount `json:"_count,omitempty"`
}

// PostCountOf returns the number of posts attached to the given count
// relation, treating a missing relation as zero.
func PostCountOf(c *PostCount) int {
	if c == nil {
		return 0
	}
	return c.Posts
}
