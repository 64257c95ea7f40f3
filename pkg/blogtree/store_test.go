package blogtree

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

func blog(id int, name string) model.BlogNode {
	return model.BlogNode{ID: id, Name: name, CreatedAt: time.Date(2024, 1, id%28+1, 0, 0, 0, 0, time.UTC)}
}

func child(id, parent int, name string) model.BlogNode {
	b := blog(id, name)
	b.ParentID = model.IntPtr(parent)
	return b
}

// loadedStore returns a store whose top level holds the given blogs.
func loadedStore(t *testing.T, blogs ...model.BlogNode) *Store {
	t.Helper()
	s := NewStore()
	if !s.BeginTopLevelFetch() {
		t.Fatal("expected top-level fetch to start")
	}
	if !s.SettleTopLevel(s.Generation(), blogs, nil) {
		t.Fatal("expected top-level result to apply")
	}
	return s
}

func TestExpandOnceRequestsOneFetch(t *testing.T) {
	s := loadedStore(t, blog(1, "Zine Robotics"))

	if !s.Toggle(1) {
		t.Fatal("first expand should request a fetch")
	}
	if !s.IsExpanded(1) || !s.IsLoading(1) {
		t.Fatal("node should be expanded and loading")
	}

	// Expanding again while the fetch is outstanding issues nothing.
	if s.Expand(1) {
		t.Error("second expand while loading must not request a fetch")
	}
}

func TestToggleWhileLoadingCollapsesWithoutFetch(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)

	if s.Toggle(1) {
		t.Error("collapse must not fetch")
	}
	if s.IsExpanded(1) {
		t.Error("node should be collapsed")
	}
	if !s.IsLoading(1) {
		t.Error("collapse must not clear the loading flag")
	}

	// Re-expanding while the original fetch is still out is guarded.
	if s.Toggle(1) {
		t.Error("re-expand while loading must not fetch again")
	}
}

func TestCollapseAndReexpandCachedIssuesNoFetch(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(2, 1, "A.1")}, nil)

	s.Toggle(1) // collapse
	if s.Toggle(1) {
		t.Error("re-expanding a cached node must not fetch")
	}
	kids, ok := s.Children(1)
	if !ok || len(kids) != 1 {
		t.Fatalf("expected cached child, got %v (cached=%v)", kids, ok)
	}
}

func TestFetchFailureLeavesNodeExpandedAndUncached(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)

	if !s.SettleChildren(s.Generation(), 1, nil, errors.New("boom")) {
		t.Fatal("expected settle to apply")
	}
	if !s.IsExpanded(1) {
		t.Error("node should stay expanded after failure")
	}
	if s.IsLoading(1) {
		t.Error("loading flag must clear on failure")
	}
	if _, ok := s.Children(1); ok {
		t.Error("failure must not populate the cache")
	}

	// No automatic retry, but a manual collapse + expand fetches again.
	s.Toggle(1)
	if !s.Toggle(1) {
		t.Error("re-expanding after a failure should fetch")
	}
}

func TestEmptyChildrenKeepsNodeExpanded(t *testing.T) {
	s := loadedStore(t, blog(1, "A"), blog(2, "B"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{}, nil)

	rows := s.Visible("")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Expanded {
		t.Error("node with empty children should stay expanded")
	}
	if _, ok := s.Children(1); !ok {
		t.Error("empty result should still be cached")
	}
}

func TestLateResultAfterCollapseIsCached(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)
	s.Toggle(1) // collapse before the fetch returns

	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(2, 1, "A.1")}, nil)

	if _, ok := s.Children(1); !ok {
		t.Error("late result should populate the cache")
	}
	if s.IsExpanded(1) {
		t.Error("late result must not re-expand the node")
	}
	if rows := s.Visible(""); len(rows) != 1 {
		t.Errorf("collapsed node should hide children, got %d rows", len(rows))
	}
}

func TestResetClearsStateAndDropsStaleResults(t *testing.T) {
	s := loadedStore(t, blog(1, "A"), blog(2, "B"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(3, 1, "A.1")}, nil)
	s.Toggle(2)
	staleGen := s.Generation()

	s.Reset()

	if s.ExpandedCount() != 0 || s.CachedCount() != 0 {
		t.Fatalf("reset should clear expansion (%d) and cache (%d)", s.ExpandedCount(), s.CachedCount())
	}
	if s.IsLoading(2) {
		t.Error("reset should clear loading flags")
	}
	if len(s.TopLevel()) != 2 {
		t.Error("top level stays visible until refetched")
	}

	if s.SettleChildren(staleGen, 2, []model.BlogNode{child(4, 2, "B.1")}, nil) {
		t.Error("stale child result should be dropped")
	}
	if s.CachedCount() != 0 {
		t.Error("stale result must not repopulate the cache")
	}
}

func TestTopLevelFetchLifecycle(t *testing.T) {
	s := NewStore()
	if !s.BeginTopLevelFetch() {
		t.Fatal("first top-level fetch should start")
	}
	if s.BeginTopLevelFetch() {
		t.Error("duplicate top-level fetch should be refused")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should report the top-level fetch")
	}

	s.SettleTopLevel(s.Generation(), nil, errors.New("offline"))
	if s.TopLevelLoaded() || s.TopLevelLoading() {
		t.Error("failed fetch leaves the list unloaded and idle")
	}

	gen := s.Generation()
	s.BeginTopLevelFetch()
	s.Reset()
	if !s.BeginTopLevelFetch() {
		t.Fatal("reset should allow a fresh top-level fetch")
	}
	if s.SettleTopLevel(gen, []model.BlogNode{blog(9, "old")}, nil) {
		t.Error("pre-reset top-level result should be dropped")
	}
	s.SettleTopLevel(s.Generation(), []model.BlogNode{blog(1, "new")}, nil)
	if got := s.TopLevel(); len(got) != 1 || got[0].Name != "new" {
		t.Errorf("unexpected top level %v", got)
	}
}

func TestFind(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(2, 1, "A.1")}, nil)

	if b, ok := s.Find(2); !ok || b.Name != "A.1" {
		t.Errorf("Find(2) = %v, %v", b, ok)
	}
	if _, ok := s.Find(99); ok {
		t.Error("Find(99) should miss")
	}
}

func TestFilterTopLevel(t *testing.T) {
	blogs := []model.BlogNode{blog(1, "Zine Robotics"), blog(2, "Blog"), blog(3, "zine archive")}

	got := FilterTopLevel(blogs, "zine")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected filter result %v", got)
	}
	if got := FilterTopLevel(blogs, "ZINE"); len(got) != 2 {
		t.Errorf("filter should be case-insensitive, got %d", len(got))
	}
	if got := FilterTopLevel(blogs, "   "); len(got) != 3 {
		t.Errorf("blank query should match all, got %d", len(got))
	}
	if got := FilterTopLevel(blogs, "robot"); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("substring match failed: %v", got)
	}
}

func TestFilterAppliesOnlyToTopLevel(t *testing.T) {
	s := loadedStore(t, blog(1, "Zine Robotics"), blog(2, "Blog"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(3, 1, "Parts list")}, nil)

	rows := s.Visible("zine")
	if len(rows) != 2 {
		t.Fatalf("expected matching root plus its unfiltered child, got %d rows", len(rows))
	}
	if rows[1].Blog.Name != "Parts list" {
		t.Errorf("child should not be filtered, got %q", rows[1].Blog.Name)
	}
}

func TestVisiblePrefixes(t *testing.T) {
	s := loadedStore(t, blog(1, "root"), blog(9, "other"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(2, 1, "a"), child(3, 1, "b")}, nil)
	s.Toggle(2)
	s.SettleChildren(s.Generation(), 2, []model.BlogNode{child(4, 2, "a.1")}, nil)
	s.Toggle(3)
	s.SettleChildren(s.Generation(), 3, []model.BlogNode{child(5, 3, "b.1")}, nil)

	rows := s.Visible("")
	want := []struct {
		name   string
		depth  int
		prefix string
	}{
		{"root", 0, ""},
		{"a", 1, "├── "},
		{"a.1", 2, "│   └── "},
		{"b", 1, "└── "},
		{"b.1", 2, "    └── "},
		{"other", 0, ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Blog.Name != w.name || rows[i].Depth != w.depth || rows[i].Prefix() != w.prefix {
			t.Errorf("row %d = (%q, %d, %q), want (%q, %d, %q)",
				i, rows[i].Blog.Name, rows[i].Depth, rows[i].Prefix(), w.name, w.depth, w.prefix)
		}
	}
}

func TestVisibleDeepNesting(t *testing.T) {
	const depth = 40
	s := loadedStore(t, blog(0, "n0"))
	for i := 0; i < depth; i++ {
		s.Toggle(i)
		s.SettleChildren(s.Generation(), i, []model.BlogNode{child(i+1, i, "n")}, nil)
	}

	rows := s.Visible("")
	if len(rows) != depth+1 {
		t.Fatalf("expected %d rows, got %d", depth+1, len(rows))
	}
	last := rows[len(rows)-1]
	if last.Depth != depth {
		t.Errorf("expected depth %d, got %d", depth, last.Depth)
	}
	if got := strings.Count(last.Prefix(), "    "); got != depth-1 {
		t.Errorf("expected %d indent segments, got %d", depth-1, got)
	}
}

func TestVisibleCycleIsNotDescended(t *testing.T) {
	s := loadedStore(t, blog(1, "A"))
	s.Toggle(1)
	s.SettleChildren(s.Generation(), 1, []model.BlogNode{child(2, 1, "B")}, nil)
	s.Toggle(2)
	// A misbehaving backend lists A as a child of B.
	s.SettleChildren(s.Generation(), 2, []model.BlogNode{child(1, 2, "A")}, nil)

	rows := s.Visible("")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[2].Cycle || rows[2].Expanded {
		t.Errorf("repeated ancestor should be marked as a cycle and not expanded: %+v", rows[2])
	}
}

// TestStoreControllerProperties drives random toggle/settle/reset sequences
// and checks the loading and cache invariants after every step.
func TestStoreControllerProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		type pending struct {
			gen uint64
			id  int
		}
		s := NewStore()
		var outstanding []pending
		succeeded := make(map[int]bool)

		t.Repeat(map[string]func(*rapid.T){
			"toggle": func(t *rapid.T) {
				id := rapid.IntRange(0, 4).Draw(t, "id")
				wasExpanded := s.IsExpanded(id)
				wasLoading := s.IsLoading(id)
				_, cached := s.Children(id)

				fetch := s.Toggle(id)
				if wasExpanded {
					if fetch {
						t.Fatalf("collapsing %d requested a fetch", id)
					}
					if s.IsExpanded(id) {
						t.Fatalf("node %d still expanded after collapse", id)
					}
					return
				}
				if want := !wasLoading && !cached; fetch != want {
					t.Fatalf("expand %d: fetch=%v want %v (loading=%v cached=%v)", id, fetch, want, wasLoading, cached)
				}
				if fetch {
					outstanding = append(outstanding, pending{s.Generation(), id})
				}
			},
			"settle": func(t *rapid.T) {
				if len(outstanding) == 0 {
					t.Skip("nothing outstanding")
				}
				i := rapid.IntRange(0, len(outstanding)-1).Draw(t, "i")
				p := outstanding[i]
				outstanding = append(outstanding[:i], outstanding[i+1:]...)

				var err error
				if rapid.Bool().Draw(t, "fail") {
					err = errors.New("boom")
				}
				applied := s.SettleChildren(p.gen, p.id, []model.BlogNode{child(100+p.id, p.id, "kid")}, err)
				if applied != (p.gen == s.Generation()) {
					t.Fatalf("settle gen %d at gen %d: applied=%v", p.gen, s.Generation(), applied)
				}
				if applied && err == nil {
					succeeded[p.id] = true
				}
			},
			"reset": func(t *rapid.T) {
				s.Reset()
				succeeded = make(map[int]bool)
			},
			"": func(t *rapid.T) {
				for id := 0; id <= 4; id++ {
					if _, cached := s.Children(id); cached != succeeded[id] {
						t.Fatalf("node %d cached=%v, want %v", id, cached, succeeded[id])
					}
					wantLoading := false
					for _, p := range outstanding {
						if p.gen == s.Generation() && p.id == id {
							wantLoading = true
						}
					}
					if s.IsLoading(id) != wantLoading {
						t.Fatalf("node %d loading=%v, want %v", id, s.IsLoading(id), wantLoading)
					}
				}
			},
		})
	})
}

func TestFilterTopLevelProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z ]{0,10}`), 0, 12).Draw(t, "names")
		query := rapid.StringMatching(`[A-Za-z]{0,3}`).Draw(t, "query")

		blogs := make([]model.BlogNode, len(names))
		for i, n := range names {
			blogs[i] = blog(i, n)
		}

		got := FilterTopLevel(blogs, query)

		q := strings.ToLower(query)
		j := 0
		for _, b := range blogs {
			matches := strings.Contains(strings.ToLower(b.Name), q)
			if matches {
				if j >= len(got) || got[j].ID != b.ID {
					t.Fatalf("blog %d (%q) should match %q in order", b.ID, b.Name, query)
				}
				j++
			}
		}
		if j != len(got) {
			t.Fatalf("filter returned %d extra blogs for %q", len(got)-j, query)
		}
	})
}
