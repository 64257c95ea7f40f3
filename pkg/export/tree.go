// Package export walks the whole blog tree and writes it out as markdown,
// YAML, JSON, SVG or a table.
package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// Lister fetches the direct children of a parent. *api.Client satisfies it.
type Lister interface {
	ListBlogs(ctx context.Context, parentID int) ([]model.BlogNode, error)
}

// TreeNode is a blog with all of its descendants.
type TreeNode struct {
	model.BlogNode `yaml:",inline"`
	Children       []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// FetchOptions controls FetchTree.
type FetchOptions struct {
	// Root is the parent whose subtree is fetched. Defaults to the top level.
	Root *int
	// Concurrency bounds the number of requests in flight per level.
	Concurrency int
	// MaxDepth stops the walk after this many levels; zero means no limit.
	MaxDepth int
}

const defaultConcurrency = 4

// FetchTree loads every blog below opts.Root, one level at a time. Requests
// within a level run concurrently. A blog id seen twice is only descended
// into once, so a cyclic backend cannot loop the walk.
func FetchTree(ctx context.Context, l Lister, opts FetchOptions) ([]*TreeNode, error) {
	root := model.TopLevelParent
	if opts.Root != nil {
		root = *opts.Root
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	top, err := l.ListBlogs(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list blogs under %d: %w", root, err)
	}

	seen := make(map[int]bool)
	var roots []*TreeNode
	for _, b := range top {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		roots = append(roots, &TreeNode{BlogNode: b})
	}

	level := roots
	for depth := 1; len(level) > 0; depth++ {
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			break
		}

		results := make([][]model.BlogNode, len(level))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, n := range level {
			g.Go(func() error {
				kids, err := l.ListBlogs(gctx, n.ID)
				if err != nil {
					return fmt.Errorf("list children of #%d: %w", n.ID, err)
				}
				results[i] = kids
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []*TreeNode
		for i, n := range level {
			for _, k := range results[i] {
				if seen[k.ID] {
					continue
				}
				seen[k.ID] = true
				child := &TreeNode{BlogNode: k}
				n.Children = append(n.Children, child)
				next = append(next, child)
			}
		}
		level = next
	}
	return roots, nil
}

// Walk visits nodes depth-first in order.
func Walk(nodes []*TreeNode, fn func(n *TreeNode, depth int)) {
	var walk func([]*TreeNode, int)
	walk = func(list []*TreeNode, depth int) {
		for _, n := range list {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// Stats summarizes a tree.
type Stats struct {
	Total    int
	TopLevel int
	Featured int
	MaxDepth int
}

// Summarize counts the blogs in nodes.
func Summarize(nodes []*TreeNode) Stats {
	s := Stats{TopLevel: len(nodes)}
	Walk(nodes, func(n *TreeNode, depth int) {
		s.Total++
		if n.Featured {
			s.Featured++
		}
		if depth+1 > s.MaxDepth {
			s.MaxDepth = depth + 1
		}
	})
	return s
}
