package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"blogctl/internal/testutil"
)

// staticTokens is a TokenSource with a settable token.
type staticTokens struct {
	token string
}

func (s *staticTokens) Token() string { return s.token }

func newTestClient(t *testing.T, tr *testutil.ScriptedTransport, tokens TokenSource, onAuthFailure func()) *Client {
	t.Helper()
	c, err := NewClient("https://blog.example.com/api", &http.Client{Transport: tr}, tokens, onAuthFailure, nil, testutil.NewStubIDGenerator())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"absolute https", "https://blog.example.com/api", false},
		{"absolute http", "http://localhost:3001/api", false},
		{"relative path", "/api", true},
		{"missing scheme", "blog.example.com/api", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL, nil, &staticTokens{}, nil, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestClientAuthHeader(t *testing.T) {
	ctx := context.Background()

	t.Run("bearer token attached when a session exists", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"data": [], "pagination": {"total": 0}}`)
		c := newTestClient(t, tr, &staticTokens{token: "tok-abc"}, nil)

		if _, err := c.ListPosts(ctx, ListParams{}); err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}

		got := tr.LastRequest().Header.Get("Authorization")
		if got != "Bearer tok-abc" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok-abc")
		}
	})

	t.Run("no header without a session", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"data": [], "pagination": {"total": 0}}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		if _, err := c.ListPosts(ctx, ListParams{}); err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}

		if got := tr.LastRequest().Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want absent", got)
		}
	})

	t.Run("every request carries a request id", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"data": [], "pagination": {"total": 0}}`)
		tr.Queue(200, `{"data": [], "pagination": {"total": 0}}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		c.ListPosts(ctx, ListParams{})
		c.ListPosts(ctx, ListParams{})

		reqs := tr.Requests()
		if got := reqs[0].Header.Get("X-Request-ID"); got != "id-1" {
			t.Errorf("first X-Request-ID = %q, want id-1", got)
		}
		if got := reqs[1].Header.Get("X-Request-ID"); got != "id-2" {
			t.Errorf("second X-Request-ID = %q, want id-2", got)
		}
	})
}

func TestClientAuthFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("403 triggers the global teardown hook", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(403, `{"message": "forbidden"}`)

		var tornDown bool
		c := newTestClient(t, tr, &staticTokens{token: "stale"}, func() { tornDown = true })

		_, err := c.ListUsers(ctx, ListParams{})
		if err == nil {
			t.Fatal("ListUsers() error = nil, want auth failure")
		}
		if !tornDown {
			t.Error("auth failure hook not invoked on 403")
		}
		if !IsAuthFailure(err) {
			t.Errorf("IsAuthFailure(%v) = false, want true", err)
		}
	})

	t.Run("401 triggers it too", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(401, `{"message": "token expired"}`)

		var tornDown bool
		c := newTestClient(t, tr, &staticTokens{token: "stale"}, func() { tornDown = true })

		_, err := c.GetUser(ctx, "u1")
		if !tornDown {
			t.Error("auth failure hook not invoked on 401")
		}
		if !IsAuthFailure(err) {
			t.Errorf("IsAuthFailure(%v) = false, want true", err)
		}
	})

	t.Run("other errors leave the session alone", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(500, `{"message": "boom"}`)

		var tornDown bool
		c := newTestClient(t, tr, &staticTokens{token: "fine"}, func() { tornDown = true })

		if _, err := c.GetPost(ctx, "p1"); err == nil {
			t.Fatal("GetPost() error = nil, want server error")
		}
		if tornDown {
			t.Error("auth failure hook invoked on 500")
		}
	})
}

func TestClientErrorMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("server message passes through verbatim", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(400, `{"message": "Title is required"}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		_, err := c.CreatePost(ctx, PostInput{})
		if err == nil {
			t.Fatal("CreatePost() error = nil, want validation error")
		}
		if !strings.Contains(err.Error(), "Title is required") {
			t.Errorf("error = %q, want the server's message in it", err)
		}
	})

	t.Run("missing message falls back to the status text", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(500, `not json at all`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		_, err := c.GetPost(ctx, "p1")
		if err == nil {
			t.Fatal("GetPost() error = nil, want server error")
		}
		if !strings.Contains(err.Error(), "Internal Server Error") {
			t.Errorf("error = %q, want status text fallback", err)
		}
	})

	t.Run("null entity maps to not found", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"data": null}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		_, err := c.GetPost(ctx, "missing")
		if !IsNotFound(err) {
			t.Errorf("IsNotFound(%v) = false, want true", err)
		}
	})
}

func TestClientEnvelopes(t *testing.T) {
	ctx := context.Background()

	t.Run("list pages decode data and total", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{
			"data": [
				{"id": "p1", "title": "First", "author": {"id": "u1", "name": "Alice"}},
				{"id": "p2", "title": "Second", "author": {"id": "u1", "name": "Alice"}}
			],
			"pagination": {"total": 23, "page": 1, "limit": 10, "totalPages": 3}
		}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		page, err := c.ListPosts(ctx, ListParams{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if len(page.Items) != 2 || page.Items[0].Title != "First" {
			t.Errorf("Items = %v, want the two posts", page.Items)
		}
		if page.Total != 23 {
			t.Errorf("Total = %d, want 23", page.Total)
		}
	})

	t.Run("list without pagination falls back to item count", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"data": [{"id": "p1", "title": "Only", "author": {"id": "u1", "name": "A"}}]}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		page, err := c.ListPosts(ctx, ListParams{})
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if page.Total != 1 {
			t.Errorf("Total = %d, want 1", page.Total)
		}
	})

	t.Run("login decodes user and access", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"user": {"id": "u1", "email": "a@b.c", "name": "Alice", "role": "ADMIN"}, "access": "tok-1"}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		user, access, err := c.Login(ctx, "a@b.c", "secret")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if user.Role != "ADMIN" || access != "tok-1" {
			t.Errorf("Login() = %+v, %q; want admin user and tok-1", user, access)
		}

		if body := tr.Body(0); !strings.Contains(body, `"email":"a@b.c"`) {
			t.Errorf("request body = %s, want credentials", body)
		}
	})

	t.Run("login without a token is an error", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{"user": {"id": "u1", "name": "Alice"}}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		if _, _, err := c.Login(ctx, "a@b.c", "secret"); err == nil {
			t.Error("Login() error = nil for a response missing access, want error")
		}
	})

	t.Run("register tolerates a session-less response", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(201, `{"user": {"id": "u1", "name": "Alice"}}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		user, access, err := c.Register(ctx, "Alice", "a@b.c", "secret")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user == nil || access != "" {
			t.Errorf("Register() = %v, %q; want user without token", user, access)
		}
	})

	t.Run("comment mutations decode the comment envelope", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(201, `{"comment": {"id": "c9", "content": "hi", "parentId": "c1", "author": {"id": "u1", "name": "A"}}}`)
		c := newTestClient(t, tr, &staticTokens{}, nil)

		parent := "c1"
		created, err := c.CreateComment(ctx, "p1", "hi", &parent)
		if err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
		if created.ID != "c9" || created.ParentID == nil || *created.ParentID != "c1" {
			t.Errorf("CreateComment() = %+v, want c9 under c1", created)
		}
		if body := tr.Body(0); !strings.Contains(body, `"parentId":"c1"`) {
			t.Errorf("request body = %s, want parentId", body)
		}
	})

	t.Run("password change sends both passwords", func(t *testing.T) {
		tr := testutil.NewScriptedTransport()
		tr.Queue(200, `{}`)
		c := newTestClient(t, tr, &staticTokens{token: "tok"}, nil)

		if err := c.ChangePassword(ctx, "u1", "old-secret", "new-secret"); err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}

		req := tr.LastRequest()
		if req.Method != http.MethodPut || !strings.HasSuffix(req.URL.Path, "/users/u1/password") {
			t.Errorf("request = %s %s, want PUT .../users/u1/password", req.Method, req.URL.Path)
		}
		body := tr.Body(0)
		if !strings.Contains(body, "old-secret") || !strings.Contains(body, "new-secret") {
			t.Errorf("request body = %s, want both passwords", body)
		}
	})
}
