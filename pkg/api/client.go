// Package api is the HTTP client for the blog backend.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/blogdesk/pkg/auth"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

const (
	// DefaultTimeout applies when no http.Client is supplied.
	DefaultTimeout = 15 * time.Second

	blogPath = "/blog"

	// maxErrorBody caps how much of an error response is kept in Error.Message.
	maxErrorBody = 512
)

// Error is returned for any non-2xx response from the backend.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("api: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the blog endpoints of the backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  auth.TokenSource
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts auth.TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  auth.NoToken{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listResponse struct {
	Blogs []model.BlogNode `json:"blogs"`
}

type blogResponse struct {
	Blog *model.BlogNode `json:"blog"`
}

type deleteRequest struct {
	BlogIDs []int `json:"blogIds"`
}

type updateRequest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Featured bool   `json:"featured"`
}

// ListBlogs returns the children of parentID, or the top-level blogs when
// parentID is model.TopLevelParent. A missing "blogs" field yields an empty
// slice.
func (c *Client) ListBlogs(ctx context.Context, parentID int) ([]model.BlogNode, error) {
	op := fmt.Sprintf("listing blogs under %d", parentID)
	q := url.Values{"id": []string{strconv.Itoa(parentID)}}

	var resp listResponse
	if err := c.do(ctx, op, http.MethodGet, q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Blogs == nil {
		return []model.BlogNode{}, nil
	}
	return resp.Blogs, nil
}

// DeleteBlogs deletes the given blogs in one request.
func (c *Client) DeleteBlogs(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	op := fmt.Sprintf("deleting blogs %v", ids)
	return c.do(ctx, op, http.MethodDelete, nil, deleteRequest{BlogIDs: ids}, nil)
}

// CreateBlog creates a blog. Set in.ParentID to create a sub-blog. The
// returned blog is nil when the backend replies without a body.
func (c *Client) CreateBlog(ctx context.Context, in model.BlogInput) (*model.BlogNode, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("api: invalid blog: %w", err)
	}
	in.Name = strings.TrimSpace(in.Name)

	var resp blogResponse
	if err := c.do(ctx, "creating blog", http.MethodPost, nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.Blog, nil
}

// UpdateBlog renames a blog or changes its featured flag.
func (c *Client) UpdateBlog(ctx context.Context, id int, in model.BlogInput) (*model.BlogNode, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("api: invalid blog: %w", err)
	}
	op := fmt.Sprintf("updating blog %d", id)
	req := updateRequest{ID: id, Name: strings.TrimSpace(in.Name), Featured: in.Featured}

	var resp blogResponse
	if err := c.do(ctx, op, http.MethodPut, nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Blog, nil
}

func (c *Client) endpoint(q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + blogPath
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method string, q url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(q), reader)
	if err != nil {
		return fmt.Errorf("api: %s failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("api: %s failed to read token: %w", op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s failed: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: %s failed to read response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: %s returned invalid json: %w", op, err)
	}
	return nil
}

// errorMessage extracts a human readable message from an error body. JSON
// bodies with an "error" or "message" field are unwrapped; anything else is
// returned trimmed and truncated.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}
