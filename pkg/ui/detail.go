package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/blogdesk/pkg/blogtree"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// DetailMarkdown describes a blog as markdown for the detail pane.
func DetailMarkdown(store *blogtree.Store, b model.BlogNode, link, dateFormat string) string {
	if dateFormat == "" {
		dateFormat = defaultDateFormat
	}
	var sb strings.Builder

	star := ""
	if b.Featured {
		star = " ★"
	}
	sb.WriteString(fmt.Sprintf("# %s%s\n\n", b.Name, star))

	parent := "top level"
	if !b.IsTopLevel() {
		parent = fmt.Sprintf("#%d", b.Parent())
		if p, ok := store.Find(b.Parent()); ok {
			parent = fmt.Sprintf("#%d %s", p.ID, p.Name)
		}
	}
	created := "unknown"
	if !b.CreatedAt.IsZero() {
		created = b.CreatedAt.Local().Format(dateFormat)
	}
	featured := "no"
	if b.Featured {
		featured = "yes"
	}

	sb.WriteString("| ID | Parent | Created | Featured |\n|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| **%d** | %s | %s | %s |\n\n", b.ID, parent, created, featured))

	sb.WriteString("### Sub-blogs\n")
	kids, cached := store.Children(b.ID)
	switch {
	case !cached:
		sb.WriteString("_Not loaded. Expand the blog in the tree to fetch them._\n\n")
	case len(kids) == 0:
		sb.WriteString("_None._\n\n")
	default:
		for _, k := range kids {
			sb.WriteString(fmt.Sprintf("- #%d %s\n", k.ID, k.Name))
		}
		sb.WriteString("\n")
	}

	if link != "" {
		sb.WriteString("### Public page\n")
		sb.WriteString(fmt.Sprintf("<%s>\n\n_Press y to copy the link._\n", link))
	}
	return sb.String()
}

// renderMarkdown renders md for a pane width columns wide. Rendering errors
// fall back to the raw markdown.
func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Sprintf("Error rendering markdown: %v\n\n%s", err, md)
	}
	return out
}
