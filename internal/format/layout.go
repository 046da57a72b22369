package format

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

const maxUnwrapPasses = 10

// UnwrapTableLayout replaces single-column layout tables with their cell
// contents, one line per row. Tables carrying data (header cells, several
// columns, long uniform lists) are kept.
func UnwrapTableLayout(raw []byte) []byte {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return raw
	}

	for range maxUnwrapPasses {
		if !unwrapTables(doc) {
			break
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return raw
	}

	return buf.Bytes()
}

// unwrapTables works bottom-up so nested layout tables dissolve first.
func unwrapTables(n *html.Node) bool {
	changed := false

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if unwrapTables(c) {
			changed = true
		}
		c = next
	}

	if isElement(n, "table") && isLayoutTable(n) {
		unwrapTable(n)
		changed = true
	}

	return changed
}

func isLayoutTable(table *html.Node) bool {
	var (
		hasHeaders  bool
		maxCols     int
		contentRows int
		rowWidths   []int
	)

	walk(table, func(n *html.Node) {
		switch {
		case isElement(n, "th"), isElement(n, "thead"):
			hasHeaders = true
		case isElement(n, "tr"):
			cols := countCells(n)
			maxCols = max(maxCols, cols)
			rowWidths = append(rowWidths, cols)
			if hasText(n) {
				contentRows++
			}
		}
	})

	if hasHeaders || maxCols > 1 {
		return false
	}

	for _, attr := range table.Attr {
		if attr.Key == "id" && (attr.Val == "main" || strings.Contains(attr.Val, "layout") || strings.Contains(attr.Val, "wrapper")) {
			return true
		}
	}

	// a long single-column list with uniform rows reads as data
	return contentRows <= 5 || !uniform(rowWidths)
}

func unwrapTable(table *html.Node) {
	parent := table.Parent
	if parent == nil {
		return
	}

	var content []*html.Node
	collectCellContent(table, &content)

	for _, node := range content {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		parent.InsertBefore(node, table)
	}
	parent.RemoveChild(table)
}

func collectCellContent(n *html.Node, content *[]*html.Node) {
	switch {
	case n.Type == html.ElementNode && isTablePart(n.Data):
		before := len(*content)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectCellContent(c, content)
		}
		if n.Data == "tr" && len(*content) > before {
			*content = append(*content, &html.Node{Type: html.TextNode, Data: "\n"})
		}
	case n.Type == html.ElementNode:
		*content = append(*content, n)
	case n.Type == html.TextNode && strings.TrimSpace(n.Data) != "":
		*content = append(*content, n)
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func countCells(row *html.Node) int {
	cells := 0
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "td") || isElement(c, "th") {
			cells++
		}
	}
	return cells
}

func hasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasText(c) {
			return true
		}
	}
	return false
}

func uniform(widths []int) bool {
	if len(widths) < 2 {
		return false
	}
	for _, w := range widths[1:] {
		if w != widths[0] {
			return false
		}
	}
	return true
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func isTablePart(tag string) bool {
	switch tag {
	case "table", "tbody", "thead", "tfoot", "tr", "td", "th":
		return true
	}
	return false
}
