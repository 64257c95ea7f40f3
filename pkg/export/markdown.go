package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// MarkdownOptions controls WriteMarkdown.
type MarkdownOptions struct {
	Title       string
	SiteURL     string // when set, blog names link to their public page
	DateFormat  string
	GeneratedAt time.Time
}

// WriteMarkdown writes a markdown report: a summary followed by the tree as
// a nested list.
func WriteMarkdown(w io.Writer, nodes []*TreeNode, opts MarkdownOptions) error {
	if opts.Title == "" {
		opts.Title = "Blogs"
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", opts.Title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", opts.GeneratedAt.Format(time.RFC1123)))

	stats := Summarize(nodes)
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total**: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("- **Top-level**: %d\n", stats.TopLevel))
	sb.WriteString(fmt.Sprintf("- **Featured**: %d\n", stats.Featured))
	sb.WriteString(fmt.Sprintf("- **Depth**: %d\n\n", stats.MaxDepth))

	sb.WriteString("## Tree\n\n")
	if len(nodes) == 0 {
		sb.WriteString("_No blogs._\n")
	}
	Walk(nodes, func(n *TreeNode, depth int) {
		name := escapeMarkdown(n.Name)
		if opts.SiteURL != "" {
			name = fmt.Sprintf("[%s](%s)", name, viewLink(opts.SiteURL, n.ID))
		}
		line := fmt.Sprintf("%s- #%d %s", strings.Repeat("  ", depth), n.ID, name)
		if n.Featured {
			line += " ★"
		}
		if !n.CreatedAt.IsZero() {
			line += fmt.Sprintf(" _(%s)_", n.CreatedAt.Format(opts.DateFormat))
		}
		sb.WriteString(line + "\n")
	})

	_, err := io.WriteString(w, sb.String())
	return err
}

// escapeMarkdown keeps names from opening links or emphasis.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")
	return r.Replace(s)
}

func viewLink(siteURL string, id int) string {
	return fmt.Sprintf("%s/blog/view?id=%d", strings.TrimRight(siteURL, "/"), id)
}
