package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"blogctl/internal/model"
)

// CommentAPI is the server surface the thread needs, scoped to one post.
type CommentAPI interface {
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, postID, content string, parentID *string) (model.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// ErrEmptyContent rejects blank comment submissions before any request.
var ErrEmptyContent = errors.New("comment content is empty")

// Draft kinds. One draft slot is shared by reply and edit; opening a second
// draft discards the first (last writer wins on the UI, not the server).
type draftKind int

const (
	draftNone draftKind = iota
	draftReply
	draftEdit
)

// CommentThread is a two-level threaded discussion under one post. The
// comment list is fetched flat and partitioned client-side into roots and
// their direct replies; deeper nesting is not rendered. Mutations patch the
// local list from the server-returned entity instead of re-fetching.
type CommentThread struct {
	api         CommentAPI
	postID      string
	currentUser func() *model.User
	logger      Logger
	visibleCap  int

	mu       sync.Mutex
	comments []model.Comment
	loading  bool
	adding   bool
	busy     map[string]bool // per-comment in-flight flags, keyed by id
	showAll  bool
	err      error

	draft     string
	draftFor  string
	draftMode draftKind
}

// NewCommentThread creates a thread for postID. currentUser supplies the
// viewer for ownership checks; visibleCap is the number of root comments
// shown before "show all" (5 when zero).
func NewCommentThread(api CommentAPI, postID string, currentUser func() *model.User, visibleCap int, logger Logger) *CommentThread {
	if visibleCap <= 0 {
		visibleCap = 5
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &CommentThread{
		api:         api,
		postID:      postID,
		currentUser: currentUser,
		logger:      logger,
		visibleCap:  visibleCap,
		busy:        make(map[string]bool),
	}
}

// Load fetches the post's comments as one flat list. No pagination is
// requested; "show more" is a client-side reveal.
func (t *CommentThread) Load(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.err = nil
	t.mu.Unlock()

	comments, err := t.api.ListComments(ctx, t.postID)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		t.err = err
		return fmt.Errorf("loading comments: %w", err)
	}
	t.comments = comments
	return nil
}

// Add posts a new root comment and prepends the server-returned entity.
func (t *CommentThread) Add(ctx context.Context, content string) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, ErrEmptyContent
	}

	t.mu.Lock()
	t.adding = true
	t.mu.Unlock()

	created, err := t.api.CreateComment(ctx, t.postID, content, nil)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.adding = false
	if err != nil {
		return model.Comment{}, fmt.Errorf("adding comment: %w", err)
	}
	t.comments = append([]model.Comment{created}, t.comments...)
	t.logger.Debug("comment added", "id", created.ID)
	return created, nil
}

// StartReply opens the shared draft for a reply to parentID, discarding any
// draft already open. Calling it again for the same target closes the draft.
func (t *CommentThread) StartReply(parentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draftMode == draftReply && t.draftFor == parentID {
		t.clearDraftLocked()
		return
	}
	t.draftMode = draftReply
	t.draftFor = parentID
	t.draft = ""
}

// StartEdit opens the shared draft for editing comment id, prefilled with
// its current content, discarding any draft already open.
func (t *CommentThread) StartEdit(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.comments {
		if c.ID == id {
			t.draftMode = draftEdit
			t.draftFor = id
			t.draft = c.Content
			return
		}
	}
}

// SetDraft replaces the shared draft text.
func (t *CommentThread) SetDraft(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = text
}

// Draft returns the shared draft text and the comment it targets.
func (t *CommentThread) Draft() (text, target string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft, t.draftFor
}

// CancelDraft closes the draft without submitting.
func (t *CommentThread) CancelDraft() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearDraftLocked()
}

func (t *CommentThread) clearDraftLocked() {
	t.draftMode = draftNone
	t.draftFor = ""
	t.draft = ""
}

// SubmitReply posts the open reply draft and appends the server-returned
// entity to the list. The parent's busy flag is held for the duration so
// other rows stay interactive.
func (t *CommentThread) SubmitReply(ctx context.Context) (model.Comment, error) {
	t.mu.Lock()
	if t.draftMode != draftReply {
		t.mu.Unlock()
		return model.Comment{}, errors.New("no reply draft open")
	}
	parentID := t.draftFor
	content := strings.TrimSpace(t.draft)
	if content == "" {
		t.mu.Unlock()
		return model.Comment{}, ErrEmptyContent
	}
	t.busy[parentID] = true
	t.mu.Unlock()

	created, err := t.api.CreateComment(ctx, t.postID, content, &parentID)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.busy, parentID)
	if err != nil {
		return model.Comment{}, fmt.Errorf("adding reply: %w", err)
	}
	t.comments = append(t.comments, created)
	t.clearDraftLocked()
	t.logger.Debug("reply added", "id", created.ID, "parent", parentID)
	return created, nil
}

// SubmitEdit saves the open edit draft and replaces the matching entity in
// the list by id.
func (t *CommentThread) SubmitEdit(ctx context.Context) (model.Comment, error) {
	t.mu.Lock()
	if t.draftMode != draftEdit {
		t.mu.Unlock()
		return model.Comment{}, errors.New("no edit draft open")
	}
	id := t.draftFor
	content := strings.TrimSpace(t.draft)
	if content == "" {
		t.mu.Unlock()
		return model.Comment{}, ErrEmptyContent
	}
	t.busy[id] = true
	t.mu.Unlock()

	updated, err := t.api.UpdateComment(ctx, id, content)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.busy, id)
	if err != nil {
		return model.Comment{}, fmt.Errorf("updating comment: %w", err)
	}
	for i, c := range t.comments {
		if c.ID == id {
			t.comments[i] = updated
			break
		}
	}
	t.clearDraftLocked()
	return updated, nil
}

// Delete removes comment id on the server, then removes it and its direct
// replies from the local list. Only direct replies cascade; with two levels
// rendered there are no deeper descendants to consider.
func (t *CommentThread) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	t.busy[id] = true
	t.mu.Unlock()

	err := t.api.DeleteComment(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.busy, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	kept := t.comments[:0]
	for _, c := range t.comments {
		if c.ID == id || (c.ParentID != nil && *c.ParentID == id) {
			continue
		}
		kept = append(kept, c)
	}
	t.comments = kept
	t.logger.Debug("comment deleted", "id", id)
	return nil
}

// Roots returns comments with no parent, in list order.
func (t *CommentThread) Roots() []model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	var roots []model.Comment
	for _, c := range t.comments {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	return roots
}

// Replies returns the direct replies of parentID, in list order. A reply
// whose parent is not in the loaded set is never returned by Roots or
// Replies and so is silently dropped from view.
func (t *CommentThread) Replies(parentID string) []model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	var replies []model.Comment
	for _, c := range t.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			replies = append(replies, c)
		}
	}
	return replies
}

// VisibleRoots returns the root comments currently revealed: all of them
// after ShowAll, otherwise the first visibleCap.
func (t *CommentThread) VisibleRoots() []model.Comment {
	roots := t.Roots()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.showAll || len(roots) <= t.visibleCap {
		return roots
	}
	return roots[:t.visibleCap]
}

// HasMore reports whether some root comments are hidden behind the cap.
func (t *CommentThread) HasMore() bool {
	roots := t.Roots()
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.showAll && len(roots) > t.visibleCap
}

// ShowAll reveals every root comment.
func (t *CommentThread) ShowAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.showAll = true
}

// CanModify reports whether the viewer authored the comment. This is a UX
// affordance only; the server is the actual authority and independently
// rejects unauthorized mutations.
func (t *CommentThread) CanModify(c model.Comment) bool {
	u := t.currentUser()
	return u != nil && u.ID != "" && u.ID == c.Author.ID
}

// Busy reports whether comment id has a mutation in flight.
func (t *CommentThread) Busy(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy[id]
}

// Adding reports whether a new root comment is being posted.
func (t *CommentThread) Adding() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adding
}

// Loading reports whether the flat list fetch is in flight.
func (t *CommentThread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Count returns the total number of loaded comments, replies included.
func (t *CommentThread) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.comments)
}

// Comments returns a copy of the flat loaded list.
func (t *CommentThread) Comments() []model.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

// Err returns the last load error.
func (t *CommentThread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
