package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/blogdesk/pkg/blogtree"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

func TestCreateFormInput(t *testing.T) {
	top := NewCreateForm(nil)
	top.name = "Zine Robotics"
	if in := top.Input(); in.ParentID != nil || in.Name != "Zine Robotics" {
		t.Errorf("top-level create should have no parent: %+v", in)
	}
	if top.Editing() {
		t.Error("create form should not be editing")
	}

	parent := model.BlogNode{ID: 7, Name: "Zine"}
	sub := NewCreateForm(&parent)
	sub.name = "Parts"
	sub.featured = true
	in := sub.Input()
	if in.ParentID == nil || *in.ParentID != 7 || !in.Featured {
		t.Errorf("sub-blog create should carry parent 7: %+v", in)
	}
}

func TestEditFormPrefills(t *testing.T) {
	f := NewEditForm(model.BlogNode{ID: 3, Name: "Old", Featured: true})
	if !f.Editing() || f.BlogID() != 3 {
		t.Fatalf("expected edit form for #3, got editing=%v id=%d", f.Editing(), f.BlogID())
	}
	in := f.Input()
	if in.Name != "Old" || !in.Featured || in.ParentID != nil {
		t.Errorf("unexpected prefill %+v", in)
	}
	if f.State() != huh.StateNormal {
		t.Errorf("new form should be open, got state %v", f.State())
	}
}

func newInternalModel(svc BlogService) Model {
	return NewModel(Options{
		Service:  svc,
		Logger:   zerolog.Nop(),
		SiteURL:  "https://zine.example.org",
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
}

func TestSubmitFormSendsUpdate(t *testing.T) {
	svc := newStubService()
	m := newInternalModel(svc)
	m.form = NewEditForm(model.BlogNode{ID: 5, Name: "Renamed"})
	m.focused = focusForm

	next, cmd := m.submitForm()
	nm := next.(Model)
	if nm.FocusState() != "tree" || nm.form != nil {
		t.Errorf("submit should close the form, focus=%s", nm.FocusState())
	}
	if cmd == nil {
		t.Fatal("expected an update command")
	}
	res := cmd().(BlogResultMsg)
	if res.Operation != BlogOpUpdate || res.BlogID != 5 || res.Err != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if svc.updated[5].Name != "Renamed" {
		t.Errorf("backend did not receive the update: %+v", svc.updated)
	}
}

func TestSubmitFormSendsCreate(t *testing.T) {
	svc := newStubService()
	m := newInternalModel(svc)
	parent := model.BlogNode{ID: 2, Name: "Zine"}
	m.form = NewCreateForm(&parent)
	m.form.name = "Child"
	m.focused = focusForm

	_, cmd := m.submitForm()
	res := cmd().(BlogResultMsg)
	if res.Operation != BlogOpCreate || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(svc.created) != 1 || *svc.created[0].ParentID != 2 {
		t.Errorf("expected create under #2, got %+v", svc.created)
	}
}

func TestDetailMarkdown(t *testing.T) {
	store := blogtree.NewStore()
	store.BeginTopLevelFetch()
	store.SettleTopLevel(store.Generation(), []model.BlogNode{{ID: 1, Name: "Zine"}}, nil)

	child := model.BlogNode{ID: 2, Name: "Parts", Featured: true, ParentID: model.IntPtr(1)}
	md := DetailMarkdown(store, child, "https://zine.example.org/blog/view?id=2", "")
	for _, want := range []string{"# Parts ★", "#1 Zine", "| **2** |", "_Not loaded.", "blog/view?id=2"} {
		if !strings.Contains(md, want) {
			t.Errorf("detail markdown missing %q:\n%s", want, md)
		}
	}

	store.Expand(2)
	store.SettleChildren(store.Generation(), 2, []model.BlogNode{}, nil)
	if md := DetailMarkdown(store, child, "", ""); !strings.Contains(md, "_None._") || strings.Contains(md, "Public page") {
		t.Errorf("expected empty sub-blog list and no link section:\n%s", md)
	}
}
