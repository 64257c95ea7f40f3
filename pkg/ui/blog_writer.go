package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// BlogService is the backend the UI talks to. *api.Client satisfies it.
type BlogService interface {
	ListBlogs(ctx context.Context, parentID int) ([]model.BlogNode, error)
	DeleteBlogs(ctx context.Context, ids []int) error
	CreateBlog(ctx context.Context, in model.BlogInput) (*model.BlogNode, error)
	UpdateBlog(ctx context.Context, id int, in model.BlogInput) (*model.BlogNode, error)
}

// BlogOperation represents the kind of mutation performed
type BlogOperation int

const (
	BlogOpCreate BlogOperation = iota
	BlogOpUpdate
	BlogOpDelete
)

func (op BlogOperation) String() string {
	switch op {
	case BlogOpCreate:
		return "create"
	case BlogOpUpdate:
		return "update"
	case BlogOpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// TopLevelLoadedMsg carries the result of a top-level fetch.
type TopLevelLoadedMsg struct {
	Blogs      []model.BlogNode
	Err        error
	Generation uint64
}

// ChildrenLoadedMsg carries the result of a child fetch for ParentID.
type ChildrenLoadedMsg struct {
	ParentID   int
	Blogs      []model.BlogNode
	Err        error
	Generation uint64
}

// BlogResultMsg is returned after a create, update or delete completes.
// Blog is set for successful creates and updates.
type BlogResultMsg struct {
	Operation BlogOperation
	BlogID    int
	Blog      *model.BlogNode
	Err       error
}

// LinkCopiedMsg reports the outcome of copying a view link.
type LinkCopiedMsg struct {
	URL string
	Err error
}

// BlogWriter turns backend calls into tea.Cmds. Every command runs off the
// event loop and reports back with a message; none of them touch UI state.
type BlogWriter struct {
	svc    BlogService
	logger zerolog.Logger
	copyFn func(string) error
}

// NewBlogWriter creates a writer for svc. A nil copyFn uses the system
// clipboard.
func NewBlogWriter(svc BlogService, logger zerolog.Logger, copyFn func(string) error) *BlogWriter {
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	return &BlogWriter{svc: svc, logger: logger, copyFn: copyFn}
}

// FetchTopLevel lists the blogs without a parent.
func (w *BlogWriter) FetchTopLevel(gen uint64) tea.Cmd {
	svc, logger := w.svc, w.logger
	return func() tea.Msg {
		blogs, err := svc.ListBlogs(context.Background(), model.TopLevelParent)
		if err != nil {
			logger.Error().Err(err).Msg("fetch top-level blogs")
		}
		return TopLevelLoadedMsg{Blogs: blogs, Err: err, Generation: gen}
	}
}

// FetchChildren lists the direct children of parentID.
func (w *BlogWriter) FetchChildren(parentID int, gen uint64) tea.Cmd {
	svc, logger := w.svc, w.logger
	return func() tea.Msg {
		blogs, err := svc.ListBlogs(context.Background(), parentID)
		if err != nil {
			logger.Error().Err(err).Int("parent_id", parentID).Msg("fetch child blogs")
		}
		return ChildrenLoadedMsg{ParentID: parentID, Blogs: blogs, Err: err, Generation: gen}
	}
}

// DeleteBlog deletes a single blog.
func (w *BlogWriter) DeleteBlog(id int) tea.Cmd {
	svc, logger := w.svc, w.logger
	return func() tea.Msg {
		err := svc.DeleteBlogs(context.Background(), []int{id})
		if err != nil {
			logger.Error().Err(err).Int("blog_id", id).Msg("delete blog")
		} else {
			logger.Info().Int("blog_id", id).Msg("blog deleted")
		}
		return BlogResultMsg{Operation: BlogOpDelete, BlogID: id, Err: err}
	}
}

// CreateBlog creates a blog, under in.ParentID when set.
func (w *BlogWriter) CreateBlog(in model.BlogInput) tea.Cmd {
	if err := in.Validate(); err != nil {
		return invalidInputCmd(BlogOpCreate, 0, err)
	}
	svc, logger := w.svc, w.logger
	return func() tea.Msg {
		blog, err := svc.CreateBlog(context.Background(), in)
		if err != nil {
			logger.Error().Err(err).Str("name", in.Name).Msg("create blog")
			return BlogResultMsg{Operation: BlogOpCreate, Err: err}
		}
		logger.Info().Int("blog_id", blog.ID).Msg("blog created")
		return BlogResultMsg{Operation: BlogOpCreate, BlogID: blog.ID, Blog: blog}
	}
}

// UpdateBlog renames a blog or changes its featured flag.
func (w *BlogWriter) UpdateBlog(id int, in model.BlogInput) tea.Cmd {
	if err := in.Validate(); err != nil {
		return invalidInputCmd(BlogOpUpdate, id, err)
	}
	svc, logger := w.svc, w.logger
	return func() tea.Msg {
		blog, err := svc.UpdateBlog(context.Background(), id, in)
		if err != nil {
			logger.Error().Err(err).Int("blog_id", id).Msg("update blog")
			return BlogResultMsg{Operation: BlogOpUpdate, BlogID: id, Err: err}
		}
		logger.Info().Int("blog_id", id).Msg("blog updated")
		return BlogResultMsg{Operation: BlogOpUpdate, BlogID: id, Blog: blog}
	}
}

// CopyLink puts url on the clipboard.
func (w *BlogWriter) CopyLink(url string) tea.Cmd {
	copyFn, logger := w.copyFn, w.logger
	return func() tea.Msg {
		if err := copyFn(url); err != nil {
			logger.Warn().Err(err).Msg("copy link")
			return LinkCopiedMsg{URL: url, Err: fmt.Errorf("clipboard unavailable: %w", err)}
		}
		return LinkCopiedMsg{URL: url}
	}
}

// invalidInputCmd reports a validation failure without calling the backend.
func invalidInputCmd(op BlogOperation, id int, err error) tea.Cmd {
	return func() tea.Msg {
		return BlogResultMsg{Operation: op, BlogID: id, Err: err}
	}
}

// ViewLink builds the public page URL of a blog.
func ViewLink(siteURL string, id int) string {
	return strings.TrimRight(siteURL, "/") + "/blog/view?id=" + strconv.Itoa(id)
}

// errNoSelection is shown when an action needs a selected blog.
var errNoSelection = errors.New("no blog selected")
