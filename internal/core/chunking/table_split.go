package chunking

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parsedTable is a rendered table broken into its header rows and body rows.
type parsedTable struct {
	header string
	rows   []string
}

// parseTable extracts the <thead> rows and every other <tr> of the first table in
// markup. ok is false when markup holds no table.
func parseTable(markup string) (parsedTable, bool) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return parsedTable{}, false
	}
	table := findElement(doc, atom.Table)
	if table == nil {
		return parsedTable{}, false
	}

	var pt parsedTable
	var header strings.Builder
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					_ = html.Render(&header, tr)
				}
			}
		case atom.Tbody, atom.Tfoot:
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					pt.rows = append(pt.rows, renderNode(tr))
				}
			}
		case atom.Tr:
			pt.rows = append(pt.rows, renderNode(c))
		}
	}
	pt.header = header.String()
	return pt, true
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func renderNode(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}

func wrapTable(header string, rows []string) string {
	var b strings.Builder
	b.WriteString("<table>")
	if header != "" {
		b.WriteString("<thead>")
		b.WriteString(header)
		b.WriteString("</thead>")
	}
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString("</table>")
	return b.String()
}

// splitTable splits a rendered table row-wise into pieces of at most target tokens,
// repeating the header in every piece. A table without its own <thead> uses
// *carried, the header of the last split table; a table with one replaces *carried.
// A row that alone exceeds target is emitted whole with the header.
func splitTable(markup string, target int, carried *string) ([]string, bool) {
	pt, ok := parseTable(markup)
	if !ok {
		return nil, false
	}
	if pt.header != "" {
		*carried = pt.header
	} else {
		pt.header = *carried
	}
	if len(pt.rows) == 0 {
		return []string{wrapTable(pt.header, nil)}, true
	}

	var prefix tokenCounter
	prefix.add("<table>")
	if pt.header != "" {
		prefix.add("<thead>" + pt.header + "</thead>")
	}

	var (
		out []string
		cur []string
		acc = prefix
	)
	for _, row := range pt.rows {
		if len(cur) > 0 && acc.with(row, "</table>") > target {
			out = append(out, wrapTable(pt.header, cur))
			cur, acc = nil, prefix
		}
		cur = append(cur, row)
		acc.add(row)
	}
	out = append(out, wrapTable(pt.header, cur))
	return out, true
}
