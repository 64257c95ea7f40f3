package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// BlogForm is the create/edit dialog. Field values live on the struct so
// the huh form can bind to them while the Model is copied around.
type BlogForm struct {
	form *huh.Form

	editing  bool
	blogID   int
	parentID *int

	name     string
	featured bool
}

// NewCreateForm opens a form for a new blog. A non-nil parent makes it a
// sub-blog of parent.
func NewCreateForm(parent *model.BlogNode) *BlogForm {
	f := &BlogForm{}
	title := "New blog"
	if parent != nil {
		f.parentID = model.IntPtr(parent.ID)
		title = fmt.Sprintf("New sub-blog of #%d %s", parent.ID, parent.Name)
	}
	f.build(title)
	return f
}

// NewEditForm opens a form prefilled with b.
func NewEditForm(b model.BlogNode) *BlogForm {
	f := &BlogForm{
		editing:  true,
		blogID:   b.ID,
		name:     b.Name,
		featured: b.Featured,
	}
	f.build(fmt.Sprintf("Edit blog #%d", b.ID))
	return f
}

func (f *BlogForm) build(title string) {
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				CharLimit(model.MaxNameLength).
				Validate(model.ValidateName).
				Value(&f.name),
			huh.NewConfirm().
				Title("Featured").
				Affirmative("Yes").
				Negative("No").
				Value(&f.featured),
		).Title(title),
	).WithShowHelp(true).WithTheme(huh.ThemeCharm())
}

// Init starts the form.
func (f *BlogForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update forwards msg to the form.
func (f *BlogForm) Update(msg tea.Msg) tea.Cmd {
	m, cmd := f.form.Update(msg)
	if form, ok := m.(*huh.Form); ok {
		f.form = form
	}
	return cmd
}

// State reports whether the form is still open, submitted or aborted.
func (f *BlogForm) State() huh.FormState {
	return f.form.State
}

// SetWidth limits the form width.
func (f *BlogForm) SetWidth(width int) {
	if width > 0 {
		f.form = f.form.WithWidth(width)
	}
}

// Editing reports whether the form edits an existing blog.
func (f *BlogForm) Editing() bool {
	return f.editing
}

// BlogID is the blog being edited, zero for creates.
func (f *BlogForm) BlogID() int {
	return f.blogID
}

// Input returns the entered values.
func (f *BlogForm) Input() model.BlogInput {
	in := model.BlogInput{Name: f.name, Featured: f.featured}
	if f.parentID != nil {
		in.ParentID = model.IntPtr(*f.parentID)
	}
	return in
}

// View renders the form.
func (f *BlogForm) View() string {
	return f.form.View()
}
