package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a yes/no modal. The highlighted choice starts on No.
type ConfirmModel struct {
	title   string
	message string
	blogID  int
	yes     bool
	width   int
	height  int
	theme   Theme
}

// NewConfirmModel creates a confirmation modal about blogID.
func NewConfirmModel(title, message string, blogID int, theme Theme) ConfirmModel {
	return ConfirmModel{
		title:   title,
		message: message,
		blogID:  blogID,
		theme:   theme,
	}
}

// SetSize updates the area the modal is centered in.
func (m *ConfirmModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// BlogID returns the blog the question is about.
func (m ConfirmModel) BlogID() int {
	return m.blogID
}

// Yes reports whether Yes is highlighted.
func (m ConfirmModel) Yes() bool {
	return m.yes
}

// HandleKey applies a key press. done is true once the user decided;
// confirmed is true only for an explicit yes.
func (m *ConfirmModel) HandleKey(msg tea.KeyMsg) (done, confirmed bool) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab", "shift+tab":
		m.yes = !m.yes
	case "y", "Y":
		return true, true
	case "n", "N", "esc", "q", "ctrl+c":
		return true, false
	case "enter":
		return true, m.yes
	}
	return false, false
}

// View renders the modal centered on screen.
func (m ConfirmModel) View() string {
	t := m.theme
	r := t.Renderer

	titleStyle := r.NewStyle().Foreground(t.Danger).Bold(true)
	button := r.NewStyle().Padding(0, 2)
	active := button.Foreground(lipgloss.Color("#FFFFFF")).Background(t.Danger).Bold(true)

	no, yes := active.Render("No"), button.Render("Yes")
	if m.yes {
		no, yes = button.Render("No"), active.Render("Yes")
	}

	lines := []string{
		titleStyle.Render(m.title),
		"",
		t.Base.Render(m.message),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, no, "  ", yes),
		"",
		r.NewStyle().Foreground(t.Muted).Italic(true).Render("←/→: choose | enter: confirm | y/n | esc: cancel"),
	}
	return placeModal(m.width, m.height, t, t.Danger, strings.Join(lines, "\n"))
}

// AlertModel is a blocking message that has to be dismissed.
type AlertModel struct {
	title   string
	message string
	width   int
	height  int
	theme   Theme
}

// NewAlertModel creates an alert.
func NewAlertModel(title, message string, theme Theme) AlertModel {
	return AlertModel{title: title, message: message, theme: theme}
}

// SetSize updates the area the alert is centered in.
func (m *AlertModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Message returns the alert text.
func (m AlertModel) Message() string {
	return m.message
}

// Dismissed reports whether msg closes the alert.
func (m AlertModel) Dismissed(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		return true
	}
	return false
}

// View renders the alert centered on screen.
func (m AlertModel) View() string {
	t := m.theme
	r := t.Renderer
	lines := []string{
		r.NewStyle().Foreground(t.Danger).Bold(true).Render(m.title),
		"",
		t.Base.Render(m.message),
		"",
		r.NewStyle().Foreground(t.Muted).Italic(true).Render("enter: dismiss"),
	}
	return placeModal(m.width, m.height, t, t.Danger, strings.Join(lines, "\n"))
}

// placeModal boxes content and centers it in a width x height area.
func placeModal(width, height int, t Theme, border lipgloss.AdaptiveColor, content string) string {
	if width == 0 {
		width = 60
	}
	if height == 0 {
		height = 20
	}

	boxWidth := 50
	if width < 60 {
		boxWidth = width - 10
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
