// Package blogtree holds the client-side state of the blog tree: the
// top-level list, lazily fetched children, which nodes are expanded and
// which are loading.
//
// A Store is owned by a single goroutine (the UI event loop). Fetches happen
// elsewhere; their results are handed back through the Settle methods.
package blogtree

import (
	"strings"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// Store is the in-memory blog tree.
//
// Invariants:
//   - children[p] exists only after a successful fetch keyed by p.
//   - loading[id] is true only between BeginFetch/Toggle/Expand and the
//     matching SettleChildren for id.
//   - Results carrying a generation older than the current one are dropped.
type Store struct {
	topLevel   []model.BlogNode
	topLoaded  bool
	topLoading bool

	children map[int][]model.BlogNode
	expanded map[int]bool
	loading  map[int]bool

	generation uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		children: make(map[int][]model.BlogNode),
		expanded: make(map[int]bool),
		loading:  make(map[int]bool),
	}
}

// Generation identifies the current reset epoch. Fetches are tagged with it.
func (s *Store) Generation() uint64 {
	return s.generation
}

// TopLevel returns the top-level blogs in backend order.
func (s *Store) TopLevel() []model.BlogNode {
	return s.topLevel
}

// TopLevelLoaded reports whether a top-level fetch has ever succeeded.
func (s *Store) TopLevelLoaded() bool {
	return s.topLoaded
}

// TopLevelLoading reports whether a top-level fetch is outstanding.
func (s *Store) TopLevelLoading() bool {
	return s.topLoading
}

// BeginTopLevelFetch marks the top-level list as loading. It returns false
// when a fetch for the current generation is already outstanding.
func (s *Store) BeginTopLevelFetch() bool {
	if s.topLoading {
		return false
	}
	s.topLoading = true
	return true
}

// SettleTopLevel records the outcome of a top-level fetch. On error the
// previous list is kept. It returns false if the result was stale.
func (s *Store) SettleTopLevel(gen uint64, blogs []model.BlogNode, err error) bool {
	if gen != s.generation {
		return false
	}
	s.topLoading = false
	if err != nil {
		return true
	}
	s.topLevel = cloneBlogs(blogs)
	s.topLoaded = true
	return true
}

// Toggle collapses an expanded node, or expands a collapsed one. It returns
// true when the caller must fetch the node's children: the node was
// expanded, nothing is cached for it and no fetch is already running.
func (s *Store) Toggle(id int) bool {
	if s.expanded[id] {
		s.Collapse(id)
		return false
	}
	return s.Expand(id)
}

// Expand expands a node. It is idempotent and returns true under the same
// rule as Toggle.
func (s *Store) Expand(id int) bool {
	s.expanded[id] = true
	if _, cached := s.children[id]; cached {
		return false
	}
	return s.BeginFetch(id)
}

// Collapse collapses a node without touching its cache or any running fetch.
func (s *Store) Collapse(id int) {
	delete(s.expanded, id)
}

// BeginFetch sets the loading flag for id. It returns false if it was
// already set.
func (s *Store) BeginFetch(id int) bool {
	if s.loading[id] {
		return false
	}
	s.loading[id] = true
	return true
}

// SettleChildren records the outcome of a child fetch for parentID. Failed
// fetches cache nothing, so the node stays expanded and empty until the
// user collapses and expands it again. A result arriving after the node was
// collapsed is still cached. It returns false if the result was stale.
func (s *Store) SettleChildren(gen uint64, parentID int, blogs []model.BlogNode, err error) bool {
	if gen != s.generation {
		return false
	}
	delete(s.loading, parentID)
	if err != nil {
		return true
	}
	s.children[parentID] = cloneBlogs(blogs)
	return true
}

// Reset drops the expansion set, the children cache and all loading flags
// and starts a new generation. The top-level list is kept on screen until
// the next SettleTopLevel replaces it.
func (s *Store) Reset() {
	s.children = make(map[int][]model.BlogNode)
	s.expanded = make(map[int]bool)
	s.loading = make(map[int]bool)
	s.topLoading = false
	s.generation++
}

// IsExpanded reports whether id is in the expansion set.
func (s *Store) IsExpanded(id int) bool {
	return s.expanded[id]
}

// IsLoading reports whether a child fetch for id is outstanding.
func (s *Store) IsLoading(id int) bool {
	return s.loading[id]
}

// Children returns the cached children of id and whether they are cached.
func (s *Store) Children(id int) ([]model.BlogNode, bool) {
	c, ok := s.children[id]
	return c, ok
}

// AnyLoading reports whether any fetch, top-level or child, is outstanding.
func (s *Store) AnyLoading() bool {
	return s.topLoading || len(s.loading) > 0
}

// ExpandedCount is the size of the expansion set.
func (s *Store) ExpandedCount() int {
	return len(s.expanded)
}

// CachedCount is the number of parents with cached children.
func (s *Store) CachedCount() int {
	return len(s.children)
}

// Find looks a blog up among the top level and all cached children.
func (s *Store) Find(id int) (model.BlogNode, bool) {
	for _, b := range s.topLevel {
		if b.ID == id {
			return b, true
		}
	}
	for _, list := range s.children {
		for _, b := range list {
			if b.ID == id {
				return b, true
			}
		}
	}
	return model.BlogNode{}, false
}

// FilterTopLevel returns the blogs whose name contains query, ignoring
// case, in their original order. A blank query matches everything.
func FilterTopLevel(blogs []model.BlogNode, query string) []model.BlogNode {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return blogs
	}
	var out []model.BlogNode
	for _, b := range blogs {
		if strings.Contains(strings.ToLower(b.Name), q) {
			out = append(out, b)
		}
	}
	return out
}

func cloneBlogs(in []model.BlogNode) []model.BlogNode {
	out := make([]model.BlogNode, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
