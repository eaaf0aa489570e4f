package structure

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/markdave123-py/layoutchunker/internal/models"
)

// RenderTableHTML renders an analyzed table as HTML. Rows are ordered by row index and
// cells by column index. A leading run of rows made only of column-header cells is
// wrapped in <thead>; every other row is a direct child of <table>.
func RenderTableHTML(t models.Table) string {
	rows := groupRows(t.Cells)

	table := element(atom.Table)
	headerRows := 0
	for headerRows < len(rows) && isHeaderRow(rows[headerRows]) {
		headerRows++
	}
	if headerRows > 0 {
		thead := element(atom.Thead)
		for _, cells := range rows[:headerRows] {
			thead.AppendChild(renderRow(cells))
		}
		table.AppendChild(thead)
	}
	for _, cells := range rows[headerRows:] {
		table.AppendChild(renderRow(cells))
	}

	var b strings.Builder
	_ = html.Render(&b, table)
	return b.String()
}

func groupRows(cells []models.TableCell) [][]models.TableCell {
	byRow := make(map[int][]models.TableCell)
	var order []int
	for _, c := range cells {
		if _, ok := byRow[c.Row]; !ok {
			order = append(order, c.Row)
		}
		byRow[c.Row] = append(byRow[c.Row], c)
	}
	sort.Ints(order)

	rows := make([][]models.TableCell, 0, len(order))
	for _, r := range order {
		cells := byRow[r]
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].Col < cells[j].Col })
		rows = append(rows, cells)
	}
	return rows
}

func isHeaderRow(cells []models.TableCell) bool {
	for _, c := range cells {
		if c.Kind != models.CellKindColumnHeader {
			return false
		}
	}
	return len(cells) > 0
}

func renderRow(cells []models.TableCell) *html.Node {
	tr := element(atom.Tr)
	for _, c := range cells {
		a := atom.Td
		if c.Kind == models.CellKindColumnHeader || c.Kind == models.CellKindRowHeader {
			a = atom.Th
		}
		cell := element(a)
		if c.ColSpan > 1 {
			cell.Attr = append(cell.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(c.ColSpan)})
		}
		if c.RowSpan > 1 {
			cell.Attr = append(cell.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(c.RowSpan)})
		}
		if c.Content != "" {
			cell.AppendChild(&html.Node{Type: html.TextNode, Data: c.Content})
		}
		tr.AppendChild(cell)
	}
	return tr
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
