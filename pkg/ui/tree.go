// tree.go - Lazily loaded blog tree view
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/blogdesk/pkg/blogtree"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

const defaultDateFormat = "2006-01-02"

// TreeModel renders the blog store as a navigable tree. The store owns all
// expansion and loading state; TreeModel only keeps the cursor, the scroll
// offset and the flattened rows derived from the store.
type TreeModel struct {
	store  *blogtree.Store
	writer *BlogWriter
	theme  Theme

	rows           []blogtree.Row
	cursor         int
	viewportOffset int
	width          int
	height         int

	query        string
	spinnerFrame string
	dateFormat   string
}

// NewTreeModel creates a tree view over store. Fetches are issued through
// writer.
func NewTreeModel(store *blogtree.Store, writer *BlogWriter, theme Theme) TreeModel {
	return TreeModel{
		store:        store,
		writer:       writer,
		theme:        theme,
		dateFormat:   defaultDateFormat,
		spinnerFrame: "…",
	}
}

// SetSize sets the number of columns and rows available to the tree.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetDateFormat sets the Go layout used for creation dates.
func (t *TreeModel) SetDateFormat(layout string) {
	if layout != "" {
		t.dateFormat = layout
	}
}

// SetSpinnerFrame sets the frame drawn next to loading nodes.
func (t *TreeModel) SetSpinnerFrame(frame string) {
	t.spinnerFrame = frame
}

// SetQuery changes the top-level filter and rebuilds the rows. Expansion
// state is untouched.
func (t *TreeModel) SetQuery(q string) {
	if q == t.query {
		return
	}
	t.query = q
	t.Refresh()
}

// Query returns the active filter.
func (t *TreeModel) Query() string {
	return t.query
}

// Refresh rebuilds the visible rows from the store, keeping the cursor on
// the same blog when it is still visible.
func (t *TreeModel) Refresh() {
	selected, hadSelection := t.SelectedBlog()
	t.rows = t.store.Visible(t.query)
	if hadSelection && t.SelectByID(selected.ID) {
		return
	}
	t.clampCursor()
}

// Rows returns the flattened visible rows in display order.
func (t *TreeModel) Rows() []blogtree.Row {
	return t.rows
}

// SelectedRow returns the row under the cursor.
func (t *TreeModel) SelectedRow() (blogtree.Row, bool) {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor], true
	}
	return blogtree.Row{}, false
}

// SelectedBlog returns the blog under the cursor.
func (t *TreeModel) SelectedBlog() (model.BlogNode, bool) {
	row, ok := t.SelectedRow()
	return row.Blog, ok
}

// Cursor returns the cursor index into Rows.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// SelectByID moves the cursor to the first row showing id.
func (t *TreeModel) SelectByID(id int) bool {
	for i, row := range t.rows {
		if row.Blog.ID == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// Toggle expands or collapses the selected blog. The returned command
// fetches its children when they are neither cached nor already loading.
func (t *TreeModel) Toggle() tea.Cmd {
	row, ok := t.SelectedRow()
	if !ok || row.Cycle {
		return nil
	}
	fetch := t.store.Toggle(row.Blog.ID)
	t.Refresh()
	if fetch {
		return t.writer.FetchChildren(row.Blog.ID, t.store.Generation())
	}
	return nil
}

// ExpandOrMoveToChild handles → / l: a collapsed blog is expanded, an
// expanded one with visible children moves the cursor to its first child.
func (t *TreeModel) ExpandOrMoveToChild() tea.Cmd {
	row, ok := t.SelectedRow()
	if !ok || row.Cycle {
		return nil
	}
	if !row.Expanded {
		fetch := t.store.Expand(row.Blog.ID)
		t.Refresh()
		if fetch {
			return t.writer.FetchChildren(row.Blog.ID, t.store.Generation())
		}
		return nil
	}
	if t.cursor+1 < len(t.rows) && t.rows[t.cursor+1].Depth == row.Depth+1 {
		t.cursor++
		t.ensureCursorVisible()
	}
	return nil
}

// CollapseOrJumpToParent handles ← / h: an expanded blog is collapsed,
// otherwise the cursor moves to the parent row.
func (t *TreeModel) CollapseOrJumpToParent() {
	row, ok := t.SelectedRow()
	if !ok {
		return
	}
	if row.Expanded {
		t.store.Collapse(row.Blog.ID)
		t.Refresh()
		return
	}
	t.JumpToParent()
}

// JumpToParent moves the cursor to the nearest row above at depth-1.
func (t *TreeModel) JumpToParent() {
	row, ok := t.SelectedRow()
	if !ok || row.Depth == 0 {
		return
	}
	for i := t.cursor - 1; i >= 0; i-- {
		if t.rows[i].Depth == row.Depth-1 {
			t.cursor = i
			t.ensureCursorVisible()
			return
		}
	}
}

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
		t.ensureCursorVisible()
	}
}

// PageDown moves the cursor down by half a screen.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize()
	t.clampCursor()
}

// PageUp moves the cursor up by half a screen.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	t.clampCursor()
}

func (t *TreeModel) pageSize() int {
	if n := t.visibleCount() / 2; n > 0 {
		return n
	}
	return 5
}

func (t *TreeModel) visibleCount() int {
	if t.height <= 0 {
		return 20
	}
	return t.height
}

func (t *TreeModel) clampCursor() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// ensureCursorVisible scrolls the viewport so the cursor row is on screen.
func (t *TreeModel) ensureCursorVisible() {
	n := t.visibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+n {
		t.viewportOffset = t.cursor - n + 1
	}
	if last := len(t.rows) - n; t.viewportOffset > last {
		t.viewportOffset = last
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the [start, end) slice of rows on screen.
func (t *TreeModel) visibleRange() (start, end int) {
	start = t.viewportOffset
	end = start + t.visibleCount()
	if end > len(t.rows) {
		end = len(t.rows)
	}
	if start > end {
		start = end
	}
	return start, end
}

// View renders the rows that fit on screen.
func (t *TreeModel) View() string {
	if len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	start, end := t.visibleRange()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := t.RenderRow(t.rows[i])
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (t *TreeModel) renderEmptyState() string {
	muted := t.theme.Renderer.NewStyle().Foreground(t.theme.Muted)

	switch {
	case !t.store.TopLevelLoaded() && t.store.TopLevelLoading():
		return muted.Render(t.spinnerFrame + " Loading blogs…")
	case !t.store.TopLevelLoaded():
		return muted.Render("Blogs could not be loaded. Press r to retry.")
	case strings.TrimSpace(t.query) != "":
		return muted.Render(fmt.Sprintf("No blogs match %q. Press esc to clear the search.", t.query))
	default:
		return muted.Render("No blogs yet. Press n to create one.")
	}
}

// RenderRow draws one row: branch prefix, affordance, id, name, creation
// date and the featured marker.
func (t *TreeModel) RenderRow(row blogtree.Row) string {
	r := t.theme.Renderer
	var sb strings.Builder

	prefix := row.Prefix()
	sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(prefix))

	sb.WriteString(r.NewStyle().Foreground(t.theme.Secondary).Render(t.affordance(row)))
	sb.WriteString(" ")

	id := fmt.Sprintf("#%d", row.Blog.ID)
	sb.WriteString(r.NewStyle().Foreground(t.theme.Highlight).Render(id))
	sb.WriteString(" ")

	date := ""
	if !row.Blog.CreatedAt.IsZero() {
		date = row.Blog.CreatedAt.Local().Format(t.dateFormat)
	}
	marker := ""
	if row.Blog.Featured {
		marker = " ★"
	}

	// prefix, affordance, id, gaps, date and marker
	used := lipgloss.Width(prefix) + 2 + len(id) + 1 + 2 + runewidth.StringWidth(date) + runewidth.StringWidth(marker)
	maxName := t.width - used
	if t.width <= 0 || maxName < 12 {
		maxName = 40
	}
	sb.WriteString(t.theme.Base.Render(truncateName(row.Blog.Name, maxName)))

	if date != "" {
		sb.WriteString("  ")
		sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(date))
	}
	if marker != "" {
		sb.WriteString(r.NewStyle().Foreground(t.theme.Featured).Bold(true).Render(marker))
	}
	return sb.String()
}

// affordance is the spinner while loading, ↺ for a cycle, ▾ when expanded
// and ▸ otherwise. Children are unknown until fetched, so every blog gets
// an arrow.
func (t *TreeModel) affordance(row blogtree.Row) string {
	switch {
	case row.Loading:
		return t.spinnerFrame
	case row.Cycle:
		return "↺"
	case row.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

// truncateName cuts a name to maxWidth display cells, ending in an ellipsis.
func truncateName(name string, maxWidth int) string {
	if maxWidth <= 1 {
		return "…"
	}
	return runewidth.Truncate(name, maxWidth, "…")
}
