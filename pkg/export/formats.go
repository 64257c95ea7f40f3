package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/blogdesk/pkg/model"
)

// Formats lists the names accepted by Write.
var Formats = []string{"md", "yaml", "json", "svg"}

// ErrUnknownFormat is returned by Write for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown export format")

// NormalizeFormat maps a format name or alias to its entry in Formats.
func NormalizeFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return "md", nil
	case "yaml", "yml":
		return "yaml", nil
	case "json":
		return "json", nil
	case "svg":
		return "svg", nil
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
}

// Write renders nodes in the named format.
func Write(w io.Writer, format string, nodes []*TreeNode, opts MarkdownOptions) error {
	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case "md":
		return WriteMarkdown(w, nodes, opts)
	case "yaml":
		return WriteYAML(w, nodes)
	case "json":
		return WriteJSON(w, nodes)
	default:
		return WriteSVG(w, nodes, SVGOptions{Title: opts.Title, DateFormat: opts.DateFormat})
	}
}

// WriteJSON writes the tree as indented JSON.
func WriteJSON(w io.Writer, nodes []*TreeNode) error {
	if nodes == nil {
		nodes = []*TreeNode{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}

// WriteYAML writes the tree as YAML.
func WriteYAML(w io.Writer, nodes []*TreeNode) error {
	if nodes == nil {
		nodes = []*TreeNode{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteTable writes one level of blogs as a table.
func WriteTable(w io.Writer, blogs []model.BlogNode, dateFormat string) error {
	if len(blogs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 blogs)")
		return nil
	}
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Parent", "Created", "Featured"})

	for _, b := range blogs {
		parent := "-"
		if !b.IsTopLevel() {
			parent = fmt.Sprintf("%d", b.Parent())
		}
		created := ""
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Format(dateFormat)
		}
		featured := ""
		if b.Featured {
			featured = "★"
		}
		t.AppendRow(table.Row{b.ID, b.Name, parent, created, featured})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d blogs)\n", len(blogs))
	return nil
}
