package blogtree

import (
	"strings"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// Row is one visible line of the tree.
type Row struct {
	Blog     model.BlogNode
	Depth    int  // 0 for top-level blogs
	Expanded bool // node is in the expansion set and will show children
	Loading  bool // a child fetch for this node is outstanding
	Last     bool // last among its siblings
	// Rails has one entry per ancestor between the root and this row's
	// parent; true when that ancestor has siblings below it.
	Rails []bool
	// Cycle marks a node that already appears among its own ancestors. It is
	// shown but never descended into.
	Cycle bool
}

// Prefix returns the branch drawing for the row: nothing for top-level
// rows, otherwise rails followed by ├── or └──.
func (r Row) Prefix() string {
	if r.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	for _, rail := range r.Rails {
		if rail {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if r.Last {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

// Visible flattens the tree into display order: the filtered top level,
// each followed by the visible rows of its cached children when expanded.
// There is no depth limit.
func (s *Store) Visible(query string) []Row {
	roots := FilterTopLevel(s.topLevel, query)
	rows := make([]Row, 0, len(roots))
	onPath := make(map[int]bool)
	for i, b := range roots {
		rows = s.appendVisible(rows, b, 0, i == len(roots)-1, nil, onPath)
	}
	return rows
}

// appendVisible adds a node and its visible descendants to rows.
func (s *Store) appendVisible(rows []Row, b model.BlogNode, depth int, last bool, rails []bool, onPath map[int]bool) []Row {
	cycle := onPath[b.ID]
	expanded := s.expanded[b.ID] && !cycle
	rows = append(rows, Row{
		Blog:     b,
		Depth:    depth,
		Expanded: expanded,
		Loading:  s.loading[b.ID],
		Last:     last,
		Rails:    rails,
		Cycle:    cycle,
	})
	if !expanded {
		return rows
	}

	kids := s.children[b.ID]
	if len(kids) == 0 {
		return rows
	}

	childRails := rails
	if depth > 0 {
		childRails = make([]bool, len(rails)+1)
		copy(childRails, rails)
		childRails[len(rails)] = !last
	}

	onPath[b.ID] = true
	for i, kid := range kids {
		rows = s.appendVisible(rows, kid, depth+1, i == len(kids)-1, childRails, onPath)
	}
	delete(onPath, b.ID)
	return rows
}
