package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
)

// SVGOptions controls WriteSVG.
type SVGOptions struct {
	Title      string
	DateFormat string
}

const (
	svgMargin    = 20
	svgRowHeight = 28
	svgIndent    = 28
	svgCharWidth = 8 // approximate advance of the monospace font
	svgTitleGap  = 36
)

// WriteSVG draws the tree as an indented outline with elbow connectors.
func WriteSVG(w io.Writer, nodes []*TreeNode, opts SVGOptions) error {
	if opts.Title == "" {
		opts.Title = "Blogs"
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}

	type placed struct {
		node  *TreeNode
		depth int
		row   int
		label string
	}
	var rows []placed
	widest := runewidth.StringWidth(opts.Title)
	Walk(nodes, func(n *TreeNode, depth int) {
		label := fmt.Sprintf("#%d %s", n.ID, n.Name)
		if n.Featured {
			label += " ★"
		}
		if !n.CreatedAt.IsZero() {
			label += "  " + n.CreatedAt.Format(opts.DateFormat)
		}
		rows = append(rows, placed{node: n, depth: depth, row: len(rows), label: label})
		if cols := depth*svgIndent/svgCharWidth + runewidth.StringWidth(label) + 2; cols > widest {
			widest = cols
		}
	})

	width := 2*svgMargin + widest*svgCharWidth
	height := 2*svgMargin + svgTitleGap + len(rows)*svgRowHeight
	if len(rows) == 0 {
		height += svgRowHeight
	}

	rowY := func(row int) int { return svgMargin + svgTitleGap + row*svgRowHeight }
	rowX := func(depth int) int { return svgMargin + depth*svgIndent }

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(opts.Title)
	canvas.Rect(0, 0, width, height, "fill:#ffffff")
	canvas.Text(svgMargin, svgMargin+14, opts.Title, "font-family:monospace;font-size:16px;font-weight:bold;fill:#333333")

	if len(rows) == 0 {
		canvas.Text(svgMargin, rowY(0)+14, "No blogs.", "font-family:monospace;font-size:13px;fill:#888888")
	}

	// Connectors from each parent's marker down to and across to each child.
	rowOf := make(map[*TreeNode]int, len(rows))
	for _, p := range rows {
		rowOf[p.node] = p.row
	}
	canvas.Gstyle("stroke:#999999;stroke-width:1;fill:none")
	for _, p := range rows {
		px := rowX(p.depth) + 5
		py := rowY(p.row) + 10
		for _, c := range p.node.Children {
			cy := rowY(rowOf[c]) + 10
			canvas.Line(px, py+5, px, cy)
			canvas.Line(px, cy, rowX(p.depth+1), cy)
		}
	}
	canvas.Gend()

	for _, p := range rows {
		x, y := rowX(p.depth), rowY(p.row)
		fill := "#7D79F6"
		if p.node.Featured {
			fill = "#FFB000"
		}
		canvas.Circle(x+5, y+10, 5, "fill:"+fill)
		canvas.Text(x+16, y+14, p.label, "font-family:monospace;font-size:13px;fill:#222222")
	}

	canvas.End()
	return nil
}
