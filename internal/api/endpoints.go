package api

import (
	"context"
	"fmt"
	"net/http"

	"blogctl/internal/blog"
	"blogctl/internal/model"
)

// Response envelopes differ per resource: list endpoints wrap rows in
// {data, pagination}, single-user fetches use {user}, comment endpoints use
// {comment}/{comments}, auth uses {user, access}. Each endpoint keeps its
// own envelope as an explicit contract; there is no universal shape.

type pagination struct {
	Total int `json:"total"`
}

type listEnvelope[T any] struct {
	Data       []T         `json:"data"`
	Pagination *pagination `json:"pagination"`
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// getList fetches one page from a {data, pagination} list endpoint. When
// the server omits pagination the row count stands in for the total.
func getList[T any](ctx context.Context, c *Client, path string, p ListParams) (blog.Page[T], error) {
	var env listEnvelope[T]
	if err := c.do(ctx, http.MethodGet, path, p.Values(), nil, &env); err != nil {
		return blog.Page[T]{}, err
	}
	total := len(env.Data)
	if env.Pagination != nil {
		total = env.Pagination.Total
	}
	return blog.Page[T]{Items: env.Data, Total: total}, nil
}

// Posts

// PostInput is the create/update payload for a post.
type PostInput struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Published    bool     `json:"published"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	CategoryID   *string  `json:"categoryId"`
	TagIDs       []string `json:"tagIds,omitempty"`
}

// ListPosts fetches a page of the public post list.
func (c *Client) ListPosts(ctx context.Context, p ListParams) (blog.Page[model.Post], error) {
	return getList[model.Post](ctx, c, "/posts", p)
}

// ListAdminPosts fetches a page of all posts, drafts included. Admin only.
func (c *Client) ListAdminPosts(ctx context.Context, p ListParams) (blog.Page[model.Post], error) {
	return getList[model.Post](ctx, c, "/admin/posts", p)
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var env dataEnvelope[*model.Post]
	if err := c.do(ctx, http.MethodGet, "/posts/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "post not found"}
	}
	return env.Data, nil
}

// CreatePost creates a post and returns the created entity.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*model.Post, error) {
	var env struct {
		Post *model.Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts", nil, in, &env); err != nil {
		return nil, err
	}
	return env.Post, nil
}

// UpdatePost updates a post and returns the updated entity.
func (c *Client) UpdatePost(ctx context.Context, id string, in PostInput) (*model.Post, error) {
	var env struct {
		Post *model.Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPut, "/posts/"+id, nil, in, &env); err != nil {
		return nil, err
	}
	return env.Post, nil
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+id, nil, nil, nil)
}

// Users

// UserInput is the update payload for a user profile.
type UserInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ListUsers fetches a page of users. Admin only.
func (c *Client) ListUsers(ctx context.Context, p ListParams) (blog.Page[model.User], error) {
	return getList[model.User](ctx, c, "/users", p)
}

// GetUser fetches a single user. Unlike posts, this endpoint wraps the
// entity in {user}.
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var env struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "user not found"}
	}
	return env.User, nil
}

// UpdateUser updates a user and returns the updated entity.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput) (*model.User, error) {
	var env struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/"+id, nil, in, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// DeleteUser deletes a user. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil)
}

// ChangePassword sets a new password for the user, verifying the current one.
func (c *Client) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(ctx, http.MethodPut, "/users/"+id+"/password", nil, body, nil)
}

// Categories

// ListCategories fetches all categories. The endpoint is unpaginated.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var env listEnvelope[model.Category]
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateCategory creates a category by name.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	var env struct {
		Category *model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPost, "/categories", nil, map[string]string{"name": name}, &env); err != nil {
		return nil, err
	}
	return env.Category, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, name string) (*model.Category, error) {
	var env struct {
		Category *model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPut, "/categories/"+id, nil, map[string]string{"name": name}, &env); err != nil {
		return nil, err
	}
	return env.Category, nil
}

// DeleteCategory deletes a category. Callers block this client-side while
// the category still has posts.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+id, nil, nil, nil)
}

// Tags

// ListTags fetches all tags. The endpoint is unpaginated.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var env listEnvelope[model.Tag]
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateTag creates a tag by name.
func (c *Client) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	var env struct {
		Tag *model.Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPost, "/tags", nil, map[string]string{"name": name}, &env); err != nil {
		return nil, err
	}
	return env.Tag, nil
}

// UpdateTag renames a tag.
func (c *Client) UpdateTag(ctx context.Context, id, name string) (*model.Tag, error) {
	var env struct {
		Tag *model.Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPut, "/tags/"+id, nil, map[string]string{"name": name}, &env); err != nil {
		return nil, err
	}
	return env.Tag, nil
}

// DeleteTag deletes a tag. Callers block this client-side while the tag
// still has posts.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tags/"+id, nil, nil, nil)
}

// Auth

type authEnvelope struct {
	User   *model.User `json:"user"`
	Access string      `json:"access"`
}

// Login exchanges credentials for a session. The response must carry both
// the user and the access token.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &env); err != nil {
		return model.User{}, "", err
	}
	if env.User == nil || env.Access == "" {
		return model.User{}, "", fmt.Errorf("login response missing user or access token")
	}
	return *env.User, env.Access, nil
}

// Register creates an account. Some deployments return a session
// ({user, access}) immediately; others expect a subsequent login, in which
// case the returned user is nil and the token empty.
func (c *Client) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &env); err != nil {
		return nil, "", err
	}
	return env.User, env.Access, nil
}

// LogoutRemote invalidates the session server-side. Local teardown is the
// session store's job and proceeds even if this call fails.
func (c *Client) LogoutRemote(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Comments

// ListComments fetches the flat comment list of a post.
func (c *Client) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	var env struct {
		Comments []model.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts/"+postID+"/comments", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Comments, nil
}

// CreateComment posts a comment under a post; a non-nil parentID makes it
// a reply to that comment.
func (c *Client) CreateComment(ctx context.Context, postID, content string, parentID *string) (model.Comment, error) {
	body := map[string]any{"content": content}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	var env struct {
		Comment *model.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts/"+postID+"/comments", nil, body, &env); err != nil {
		return model.Comment{}, err
	}
	if env.Comment == nil {
		return model.Comment{}, fmt.Errorf("create comment response missing comment")
	}
	return *env.Comment, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, id, content string) (model.Comment, error) {
	var env struct {
		Comment *model.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPut, "/comments/"+id, nil, map[string]string{"content": content}, &env); err != nil {
		return model.Comment{}, err
	}
	if env.Comment == nil {
		return model.Comment{}, fmt.Errorf("update comment response missing comment")
	}
	return *env.Comment, nil
}

// DeleteComment deletes a comment. The server cascades to replies; the
// thread mirrors that locally.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+id, nil, nil, nil)
}

var _ blog.CommentAPI = (*Client)(nil)
