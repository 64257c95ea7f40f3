package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestConfirmDefaultsToNo(t *testing.T) {
	m := NewConfirmModel("Delete blog", "Delete #1?", 1, newTreeTestTheme())
	if m.Yes() {
		t.Fatal("confirm should start on No")
	}
	done, confirmed := m.HandleKey(keyPress("enter"))
	if !done || confirmed {
		t.Errorf("enter on default should cancel, got done=%v confirmed=%v", done, confirmed)
	}
}

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name          string
		keys          []string
		wantDone      bool
		wantConfirmed bool
	}{
		{"y confirms", []string{"y"}, true, true},
		{"n cancels", []string{"n"}, true, false},
		{"esc cancels", []string{"esc"}, true, false},
		{"right then enter confirms", []string{"right", "enter"}, true, true},
		{"toggle twice then enter cancels", []string{"tab", "tab", "enter"}, true, false},
		{"unrelated key waits", []string{"x"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModel("Delete blog", "?", 9, newTreeTestTheme())
			var done, confirmed bool
			for _, k := range tt.keys {
				done, confirmed = m.HandleKey(keyPress(k))
			}
			if done != tt.wantDone || confirmed != tt.wantConfirmed {
				t.Errorf("got done=%v confirmed=%v, want %v %v", done, confirmed, tt.wantDone, tt.wantConfirmed)
			}
		})
	}
}

func TestConfirmView(t *testing.T) {
	m := NewConfirmModel("Delete blog", `Delete #4 "Zine"?`, 4, newTreeTestTheme())
	m.SetSize(80, 24)
	out := m.View()
	for _, want := range []string{"Delete blog", `Delete #4 "Zine"?`, "No", "Yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("confirm view missing %q", want)
		}
	}
	if m.BlogID() != 4 {
		t.Errorf("expected blog id 4, got %d", m.BlogID())
	}
}

func TestAlertDismissal(t *testing.T) {
	a := NewAlertModel("Delete failed", "api: delete blog: 500 boom", newTreeTestTheme())
	if a.Dismissed(keyPress("x")) {
		t.Error("x should not dismiss the alert")
	}
	for _, k := range []string{"enter", "esc", " "} {
		if !a.Dismissed(keyPress(k)) {
			t.Errorf("%q should dismiss the alert", k)
		}
	}
	if !strings.Contains(a.View(), "500 boom") {
		t.Error("alert view should show the message")
	}
}
