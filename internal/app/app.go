package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"blogctl/internal/api"
	"blogctl/internal/blog"
	"blogctl/internal/config"
	"blogctl/internal/credstore"
	"blogctl/internal/encryption"
	"blogctl/internal/model"
)

// App is the application layer between the CLI and the client components.
// It constructs all dependencies from config, exposes high-level operations,
// and manages resource lifecycle on Close.
type App struct {
	cfg      *config.Config
	creds    credstore.Store
	bus      credstore.Bus
	sessions *blog.SessionStore
	client   *api.Client
	logger   blog.Logger
	logFile  *os.File

	// OnSessionExpired runs after a 401/403 tears the session down; the
	// CLI uses it to point the user at the login entry point.
	OnSessionExpired func()
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "ListPosts", "Login").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption, os.Getenv("BLOGCTL_PASSPHRASE"))
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	creds, err := credstore.NewStoreFromConfig(cfg.Credentials, enc)
	if err != nil {
		return nil, fmt.Errorf("creating credential storage: %w", err)
	}

	bus, err := credstore.NewBusFromConfig(cfg.Sync, creds)
	if err != nil {
		creds.Close()
		return nil, fmt.Errorf("creating sync bus: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID+"-"+operation)
	if err != nil {
		bus.Close()
		creds.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &App{
		cfg:     cfg,
		creds:   creds,
		bus:     bus,
		logger:  logger,
		logFile: logFile,
	}

	a.sessions = blog.NewSessionStore(creds, bus, logger, blog.UUIDGenerator{})

	client, err := api.NewClient(cfg.API.BaseURL, nil, a.sessions, a.onAuthFailure, logger, blog.UUIDGenerator{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	a.client = client

	// Storage is hydrated once everything is wired, never during
	// construction of individual components.
	a.sessions.Hydrate()

	return a, nil
}

// onAuthFailure is the global 401/403 policy: tear the session down and
// send the user back to the login entry point.
func (a *App) onAuthFailure() {
	if err := a.sessions.Logout(); err != nil {
		a.logger.Error("clearing session after auth failure", "error", err)
	}
	a.logger.Warn("session invalidated by server")
	if a.OnSessionExpired != nil {
		a.OnSessionExpired()
	}
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error

	a.sessions.Close()
	if err := a.bus.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing sync bus: %w", err)
	}
	if err := a.creds.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing credential storage: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Client exposes the API client for single-entity operations.
func (a *App) Client() *api.Client { return a.client }

// Sessions exposes the session store.
func (a *App) Sessions() *blog.SessionStore { return a.sessions }

// Session operations

// Login authenticates against the API and starts a local session.
func (a *App) Login(ctx context.Context, email, password string) (model.User, error) {
	user, access, err := a.client.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := a.sessions.Login(user, access); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Register creates an account. When the API returns a session it is started
// locally; otherwise the caller must log in afterwards. Reports whether a
// session was started.
func (a *App) Register(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	user, access, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, false, err
	}
	if user != nil && access != "" {
		if err := a.sessions.Login(*user, access); err != nil {
			return user, false, err
		}
		return user, true, nil
	}
	return user, false, nil
}

// Logout invalidates the server session best-effort, then clears the local
// one. Local teardown proceeds even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	if a.sessions.Current().Authenticated {
		if err := a.client.LogoutRemote(ctx); err != nil {
			a.logger.Warn("remote logout failed", "error", err)
		}
	}
	return a.sessions.Logout()
}

// ChangePassword validates and submits a password change for the current user.
func (a *App) ChangePassword(ctx context.Context, current, next, confirm string) error {
	sess := a.sessions.Current()
	if sess.User == nil {
		return fmt.Errorf("not logged in")
	}
	if next != confirm {
		return fmt.Errorf("new passwords do not match")
	}
	if len(next) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return a.client.ChangePassword(ctx, sess.User.ID, current, next)
}

// List controllers, one per screen. Each instantiates the shared
// controller with that screen's page size, endpoint, and gate.

// PublicPostsController lists published posts, newest first (the home feed).
// The published filter is pinned regardless of the passed filters.
func (a *App) PublicPostsController(search string, f blog.Filters) *blog.ListController[model.Post] {
	f.Status = "published"
	return blog.NewListController(blog.ListConfig[model.Post]{
		PageSize:       a.cfg.UI.PostsPageSize,
		SearchQuiet:    a.cfg.SearchQuiet(),
		InitialSearch:  search,
		InitialFilters: f,
		Fetch: func(ctx context.Context, q blog.ListQuery) (blog.Page[model.Post], error) {
			return a.client.ListPosts(ctx, api.ParamsFromQuery(q))
		},
		ID:     func(p model.Post) string { return p.ID },
		Logger: a.logger,
	})
}

// MyPostsController lists the current user's posts, drafts included.
func (a *App) MyPostsController(search string, f blog.Filters) *blog.ListController[model.Post] {
	return blog.NewListController(blog.ListConfig[model.Post]{
		PageSize:       a.cfg.UI.PostsPageSize,
		SearchQuiet:    a.cfg.SearchQuiet(),
		InitialSearch:  search,
		InitialFilters: f,
		Authorized:     func() bool { return a.sessions.Current().Authenticated },
		Fetch: func(ctx context.Context, q blog.ListQuery) (blog.Page[model.Post], error) {
			p := api.ParamsFromQuery(q)
			if u := a.sessions.Current().User; u != nil {
				p.AuthorID = u.ID
			}
			return a.client.ListPosts(ctx, p)
		},
		Delete: func(ctx context.Context, post model.Post) error {
			return a.client.DeletePost(ctx, post.ID)
		},
		ID:     func(p model.Post) string { return p.ID },
		Logger: a.logger,
	})
}

// AdminPostsController lists all posts for the admin dashboard.
// Fetches are skipped entirely for non-admins.
func (a *App) AdminPostsController(search string, f blog.Filters) *blog.ListController[model.Post] {
	return blog.NewListController(blog.ListConfig[model.Post]{
		PageSize:       a.cfg.UI.AdminPageSize,
		SearchQuiet:    a.cfg.SearchQuiet(),
		InitialSearch:  search,
		InitialFilters: f,
		Authorized:     a.sessions.IsAdmin,
		Fetch: func(ctx context.Context, q blog.ListQuery) (blog.Page[model.Post], error) {
			return a.client.ListAdminPosts(ctx, api.ParamsFromQuery(q))
		},
		Delete: func(ctx context.Context, post model.Post) error {
			return a.client.DeletePost(ctx, post.ID)
		},
		ID:     func(p model.Post) string { return p.ID },
		Logger: a.logger,
	})
}

// UsersController lists accounts for the admin dashboard.
func (a *App) UsersController(search string, f blog.Filters) *blog.ListController[model.User] {
	return blog.NewListController(blog.ListConfig[model.User]{
		PageSize:       a.cfg.UI.AdminPageSize,
		SearchQuiet:    a.cfg.SearchQuiet(),
		InitialSearch:  search,
		InitialFilters: f,
		Authorized:     a.sessions.IsAdmin,
		Fetch: func(ctx context.Context, q blog.ListQuery) (blog.Page[model.User], error) {
			return a.client.ListUsers(ctx, api.ParamsFromQuery(q))
		},
		Delete: func(ctx context.Context, u model.User) error {
			return a.client.DeleteUser(ctx, u.ID)
		},
		ID:     func(u model.User) string { return u.ID },
		Logger: a.logger,
	})
}

// CommentThread opens the discussion under a post.
func (a *App) CommentThread(postID string) *blog.CommentThread {
	currentUser := func() *model.User { return a.sessions.Current().User }
	return blog.NewCommentThread(a.client, postID, currentUser, a.cfg.UI.VisibleComments, a.logger)
}

// Category and tag maintenance. Deletion is blocked client-side while
// posts still reference the entity, matching the admin screen.

func (a *App) DeleteCategory(ctx context.Context, cat model.Category) error {
	if n := model.PostCountOf(cat.Count); n > 0 {
		return fmt.Errorf("category %q still has %d post(s)", cat.Name, n)
	}
	return a.client.DeleteCategory(ctx, cat.ID)
}

func (a *App) DeleteTag(ctx context.Context, tag model.Tag) error {
	if n := model.PostCountOf(tag.Count); n > 0 {
		return fmt.Errorf("tag %q still has %d post(s)", tag.Name, n)
	}
	return a.client.DeleteTag(ctx, tag.ID)
}
