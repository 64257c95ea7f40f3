package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/blogdesk/pkg/blogtree"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

const statusRefreshing = "Refreshing…"

type focus int

const (
	focusTree focus = iota
	focusSearch
	focusConfirm
	focusAlert
	focusForm
	focusDetail
)

func (f focus) String() string {
	switch f {
	case focusSearch:
		return "search"
	case focusConfirm:
		return "confirm"
	case focusAlert:
		return "alert"
	case focusForm:
		return "form"
	case focusDetail:
		return "detail"
	default:
		return "tree"
	}
}

// Options configures NewModel.
type Options struct {
	Service    BlogService
	Logger     zerolog.Logger
	SiteURL    string
	DateFormat string
	// Clipboard replaces the system clipboard, mainly for tests.
	Clipboard func(string) error
	// Renderer defaults to lipgloss.DefaultRenderer().
	Renderer *lipgloss.Renderer
}

// Model is the root Bubble Tea model of the blog admin view. It is the
// only owner of the blog store; backend results arrive as messages.
type Model struct {
	store  *blogtree.Store
	writer *BlogWriter
	tree   TreeModel
	theme  Theme
	keys   keyMap
	logger zerolog.Logger

	help     help.Model
	spinner  spinner.Model
	spinning bool
	search   textinput.Model
	confirm  ConfirmModel
	alert    AlertModel
	form     *BlogForm
	detail   viewport.Model

	focused    focus
	status     string
	siteURL    string
	dateFormat string

	width  int
	height int
	ready  bool
}

// NewModel creates the root model. Nothing is fetched until Init.
func NewModel(opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	theme := DefaultTheme(r)
	store := blogtree.NewStore()
	writer := NewBlogWriter(opts.Service, opts.Logger, opts.Clipboard)

	tree := NewTreeModel(store, writer, theme)
	tree.SetDateFormat(opts.DateFormat)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = r.NewStyle().Foreground(theme.Secondary)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter top-level blogs"
	ti.CharLimit = model.MaxNameLength

	dateFormat := opts.DateFormat
	if dateFormat == "" {
		dateFormat = defaultDateFormat
	}

	return Model{
		store:      store,
		writer:     writer,
		tree:       tree,
		theme:      theme,
		keys:       defaultKeyMap(),
		logger:     opts.Logger,
		help:       help.New(),
		spinner:    s,
		spinning:   true,
		search:     ti,
		detail:     viewport.New(80, 20),
		focused:    focusTree,
		siteURL:    opts.SiteURL,
		dateFormat: dateFormat,
	}
}

// Init issues the first top-level fetch and starts the spinner.
func (m Model) Init() tea.Cmd {
	if !m.store.BeginTopLevelFetch() {
		return m.spinner.Tick
	}
	return tea.Batch(m.writer.FetchTopLevel(m.store.Generation()), m.spinner.Tick)
}

// Update handles backend results, spinner ticks, resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.store.AnyLoading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.tree.SetSpinnerFrame(m.spinner.View())
		return m, cmd

	case TopLevelLoadedMsg:
		if !m.store.SettleTopLevel(msg.Generation, msg.Blogs, msg.Err) {
			m.logger.Debug().Uint64("generation", msg.Generation).Msg("dropping stale top-level result")
			return m, nil
		}
		if msg.Err != nil {
			m.status = "Could not load blogs: " + shortError(msg.Err)
		} else if m.status == statusRefreshing || strings.HasPrefix(m.status, "Could not load blogs") {
			m.status = ""
		}
		m.tree.Refresh()
		return m, nil

	case ChildrenLoadedMsg:
		if !m.store.SettleChildren(msg.Generation, msg.ParentID, msg.Blogs, msg.Err) {
			m.logger.Debug().Int("parent_id", msg.ParentID).Uint64("generation", msg.Generation).
				Msg("dropping stale child result")
			return m, nil
		}
		if msg.Err != nil {
			m.status = fmt.Sprintf("Could not load sub-blogs of #%d: %s", msg.ParentID, shortError(msg.Err))
		}
		m.tree.Refresh()
		return m, nil

	case BlogResultMsg:
		return m.handleResult(msg)

	case LinkCopiedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = "Copied " + msg.URL
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focused {
		case focusSearch:
			return m.handleSearchKey(msg)
		case focusConfirm:
			return m.handleConfirmKey(msg)
		case focusAlert:
			if m.alert.Dismissed(msg) {
				m.focused = focusTree
			}
			return m, nil
		case focusForm:
			return m.handleFormMsg(msg)
		case focusDetail:
			return m.handleDetailKey(msg)
		default:
			return m.handleTreeKey(msg)
		}
	}

	// huh and textinput use internal messages of their own.
	switch m.focused {
	case focusForm:
		return m.handleFormMsg(msg)
	case focusSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.tree.JumpToBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Toggle):
		return m, m.withSpinner(m.tree.Toggle())
	case key.Matches(msg, m.keys.Expand):
		return m, m.withSpinner(m.tree.ExpandOrMoveToChild())
	case key.Matches(msg, m.keys.Collapse):
		m.tree.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.Search):
		m.focused = focusSearch
		m.search.SetValue(m.tree.Query())
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.ClearFind):
		m.search.SetValue("")
		m.tree.SetQuery("")
	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
	case key.Matches(msg, m.keys.New):
		return m.openForm(NewCreateForm(nil))
	case key.Matches(msg, m.keys.NewChild):
		b, ok := m.tree.SelectedBlog()
		if !ok {
			m.status = errNoSelection.Error()
			return m, nil
		}
		return m.openForm(NewCreateForm(&b))
	case key.Matches(msg, m.keys.Edit):
		b, ok := m.tree.SelectedBlog()
		if !ok {
			m.status = errNoSelection.Error()
			return m, nil
		}
		return m.openForm(NewEditForm(b))
	case key.Matches(msg, m.keys.Delete):
		b, ok := m.tree.SelectedBlog()
		if !ok {
			m.status = errNoSelection.Error()
			return m, nil
		}
		m.confirm = NewConfirmModel(
			"Delete blog",
			fmt.Sprintf("Delete #%d %q and everything below it?", b.ID, b.Name),
			b.ID, m.theme)
		m.confirm.SetSize(m.width, m.height)
		m.focused = focusConfirm
	case key.Matches(msg, m.keys.CopyLink):
		b, ok := m.tree.SelectedBlog()
		if !ok {
			m.status = errNoSelection.Error()
			return m, nil
		}
		return m, m.writer.CopyLink(ViewLink(m.siteURL, b.ID))
	case key.Matches(msg, m.keys.Refresh):
		m.status = statusRefreshing
		return m, m.resetAndReload()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	}
	return m, nil
}

// handleSearchKey edits the filter live; enter keeps it, esc clears it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.focused = focusTree
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.tree.SetQuery("")
		m.focused = focusTree
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.tree.SetQuery(m.search.Value())
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	done, confirmed := m.confirm.HandleKey(msg)
	if !done {
		return m, nil
	}
	m.focused = focusTree
	if !confirmed {
		return m, nil
	}
	id := m.confirm.BlogID()
	m.status = fmt.Sprintf("Deleting #%d…", id)
	return m, m.writer.DeleteBlog(id)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), msg.String() == "esc", key.Matches(msg, m.keys.Detail):
		m.focused = focusTree
		return m, nil
	case key.Matches(msg, m.keys.CopyLink):
		if b, ok := m.tree.SelectedBlog(); ok {
			return m, m.writer.CopyLink(ViewLink(m.siteURL, b.ID))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) openForm(f *BlogForm) (tea.Model, tea.Cmd) {
	m.form = f
	m.form.SetWidth(m.formWidth())
	m.focused = focusForm
	return m, m.form.Init()
}

// handleFormMsg forwards to the huh form and submits once it completes.
func (m Model) handleFormMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.focused = focusTree
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		m.focused = focusTree
		m.status = "Cancelled"
		return m, nil
	}

	cmd := m.form.Update(msg)
	switch m.form.State() {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		m.form = nil
		m.focused = focusTree
		m.status = "Cancelled"
		return m, nil
	}
	return m, cmd
}

// submitForm sends the completed form to the backend.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	m.form = nil
	m.focused = focusTree
	if f == nil {
		return m, nil
	}
	if f.Editing() {
		m.status = fmt.Sprintf("Saving #%d…", f.BlogID())
		return m, m.writer.UpdateBlog(f.BlogID(), f.Input())
	}
	m.status = "Creating blog…"
	return m, m.writer.CreateBlog(f.Input())
}

// handleResult settles a create, update or delete. Deletes reset the view
// whether or not they succeeded; a failure also raises an alert.
func (m Model) handleResult(msg BlogResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.status = fmt.Sprintf("%s failed", msg.Operation)
		m.alert = NewAlertModel(alertTitle(msg.Operation), msg.Err.Error(), m.theme)
		m.alert.SetSize(m.width, m.height)
		m.focused = focusAlert
		if msg.Operation == BlogOpDelete {
			return m, m.resetAndReload()
		}
		return m, nil
	}

	switch msg.Operation {
	case BlogOpDelete:
		m.status = fmt.Sprintf("Deleted #%d", msg.BlogID)
	case BlogOpCreate:
		m.status = fmt.Sprintf("Created #%d", msg.BlogID)
	case BlogOpUpdate:
		m.status = fmt.Sprintf("Saved #%d", msg.BlogID)
	}
	return m, m.resetAndReload()
}

// resetAndReload clears expansion, cache and loading state and fetches the
// top level again.
func (m *Model) resetAndReload() tea.Cmd {
	m.store.Reset()
	m.tree.Refresh()
	if !m.store.BeginTopLevelFetch() {
		return nil
	}
	return m.withSpinner(m.writer.FetchTopLevel(m.store.Generation()))
}

// withSpinner restarts the spinner alongside a fetch when it is idle.
func (m *Model) withSpinner(fetch tea.Cmd) tea.Cmd {
	if fetch == nil {
		return nil
	}
	if m.spinning {
		return fetch
	}
	m.spinning = true
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m *Model) openDetail() {
	b, ok := m.tree.SelectedBlog()
	if !ok {
		m.status = errNoSelection.Error()
		return
	}
	md := DetailMarkdown(m.store, b, ViewLink(m.siteURL, b.ID), m.dateFormat)
	m.detail.SetContent(renderMarkdown(md, m.detail.Width))
	m.detail.GotoTop()
	m.focused = focusDetail
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true
	m.help.Width = width

	body := height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderFooter())
	if body < 1 {
		body = 1
	}
	m.tree.SetSize(width, body)
	m.detail.Width = width
	m.detail.Height = body
	m.confirm.SetSize(width, height)
	m.alert.SetSize(width, height)
	if m.form != nil {
		m.form.SetWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	if m.width > 0 && m.width < 70 {
		return m.width - 4
	}
	return 60
}

// View renders the header, the focused body and the footer.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.focused {
	case focusConfirm:
		return m.confirm.View()
	case focusAlert:
		return m.alert.View()
	case focusForm:
		if m.form != nil {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.View())
		}
		body = m.tree.View()
	case focusDetail:
		body = m.detail.View()
	default:
		body = m.tree.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	r := m.theme.Renderer
	title := r.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("Blogs")

	parts := []string{title}
	if m.store.TopLevelLoaded() {
		shown := len(blogtree.FilterTopLevel(m.store.TopLevel(), m.tree.Query()))
		count := fmt.Sprintf("%d top-level", len(m.store.TopLevel()))
		if shown != len(m.store.TopLevel()) {
			count = fmt.Sprintf("%d of %d top-level", shown, len(m.store.TopLevel()))
		}
		parts = append(parts, r.NewStyle().Foreground(m.theme.Muted).Render(count))
	}
	if m.store.AnyLoading() {
		parts = append(parts, m.spinner.View())
	}

	line := strings.Join(parts, "  ")
	switch {
	case m.focused == focusSearch:
		line += "\n" + m.search.View()
	case m.tree.Query() != "":
		line += "\n" + r.NewStyle().Foreground(m.theme.Secondary).Render("filter: "+m.tree.Query())
	}
	return line
}

func (m Model) renderFooter() string {
	r := m.theme.Renderer
	var lines []string
	if m.status != "" {
		lines = append(lines, r.NewStyle().Foreground(m.theme.Secondary).Render(m.status))
	}
	switch m.focused {
	case focusDetail:
		lines = append(lines, r.NewStyle().Foreground(m.theme.Muted).Render("esc: back | j/k: scroll | y: copy link"))
	case focusSearch:
		lines = append(lines, r.NewStyle().Foreground(m.theme.Muted).Render("enter: keep filter | esc: clear"))
	default:
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

func alertTitle(op BlogOperation) string {
	switch op {
	case BlogOpDelete:
		return "Delete failed"
	case BlogOpCreate:
		return "Create failed"
	default:
		return "Save failed"
	}
}

// shortError keeps status-bar errors to their first line.
func shortError(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// FocusState returns the name of the focused pane.
func (m Model) FocusState() string {
	return m.focused.String()
}

// Status returns the status-bar text.
func (m Model) Status() string {
	return m.status
}

// AlertMessage returns the text of the open alert, if any.
func (m Model) AlertMessage() string {
	if m.focused != focusAlert {
		return ""
	}
	return m.alert.Message()
}

// Store exposes the blog store for inspection.
func (m Model) Store() *blogtree.Store {
	return m.store
}

// Tree exposes the tree view for inspection.
func (m Model) Tree() *TreeModel {
	return &m.tree
}

// SelectedBlog returns the blog under the cursor.
func (m Model) SelectedBlog() (model.BlogNode, bool) {
	return m.tree.SelectedBlog()
}
