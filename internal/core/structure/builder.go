// Package structure reconstructs an ordered, non-overlapping list of classified
// content records (titles, section headings, body text, tables) from layout-analysis
// output.
//
// Tables claim their character ranges first, in input order; where two tables
// overlap the later one takes the shared characters and the earlier one keeps the
// rest. A paragraph whose first character is already claimed is dropped. Offsets are character (rune) offsets into the content.
package structure

import (
	"sort"
	"strings"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

// SpanMode selects how a table's spans become claimed ranges.
type SpanMode int

const (
	// BoundingSpans claims [min start, max end) across all spans of a table. Content
	// sitting between disjoint spans is treated as part of the table.
	BoundingSpans SpanMode = iota
	// LiteralSpans claims each listed span on its own; the table record is emitted at
	// the end of its last span.
	LiteralSpans
)

// Options configures a Builder. The zero value uses BoundingSpans.
type Options struct {
	TableSpanMode SpanMode
}

// Builder turns RawDocuments into structure records. It holds no per-document
// state and is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder configured by opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

type pageMark struct {
	offset int
	page   int
}

// Build classifies doc into structure records. It returns an error wrapping
// core.ErrValidation for malformed input and core.ErrStructure when nothing usable
// remains; it never returns partial output.
func (b *Builder) Build(doc *models.RawDocument) ([]models.StructureRecord, error) {
	if doc == nil {
		return nil, core.Validationf("raw document is nil")
	}
	content := []rune(doc.Content)
	n := len(content)
	if n == 0 {
		return nil, core.Validationf("document content is empty")
	}

	var a arena
	if err := b.claimTables(&a, doc.Tables, n); err != nil {
		return nil, err
	}

	marks := make([]pageMark, 0, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		if p.Offset < 0 || p.Length < 0 || p.Offset+p.Length > n {
			return nil, core.Validationf("paragraph %d span [%d,+%d) outside content of length %d", i, p.Offset, p.Length, n)
		}
		if p.Length == 0 {
			continue
		}
		marks = append(marks, pageMark{offset: p.Offset, page: p.PageNumber})

		if a.claimed(p.Offset) {
			continue
		}
		end := a.limitAfter(p.Offset, p.Offset+p.Length)
		a.insert(taggedRange{start: p.Offset, end: end, kind: kindFor(p.Role)})
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].offset < marks[j].offset })

	records := scan(a.ranges, marks, content, doc.Tables)
	if len(records) == 0 {
		return nil, core.Structuref("document produced no text or table records")
	}
	return records, nil
}

func (b *Builder) claimTables(a *arena, tables []models.Table, n int) error {
	for ti, t := range tables {
		if len(t.Spans) == 0 {
			return core.Validationf("table %d has no spans", ti)
		}
		for si, s := range t.Spans {
			if s.Offset < 0 || s.Length <= 0 || s.End() > n {
				return core.Validationf("table %d span %d [%d,+%d) outside content of length %d", ti, si, s.Offset, s.Length, n)
			}
		}
		for ci, c := range t.Cells {
			if c.Row < 0 || c.Col < 0 {
				return core.Validationf("table %d cell %d has negative row/col", ti, ci)
			}
		}

		for _, r := range tableRanges(t.Spans, b.opts.TableSpanMode) {
			a.carve(r.start, r.end)
			r.kind = kindTable
			r.table = ti
			a.insert(r)
		}
	}
	a.markTableEnds()
	return nil
}

// tableRanges converts a table's spans into the ranges it claims. The last range
// carries emit.
func tableRanges(spans []models.Span, mode SpanMode) []taggedRange {
	if mode == BoundingSpans {
		lo, hi := spans[0].Offset, spans[0].End()
		for _, s := range spans[1:] {
			lo = min(lo, s.Offset)
			hi = max(hi, s.End())
		}
		return []taggedRange{{start: lo, end: hi, emit: true}}
	}

	sorted := append([]models.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out []taggedRange
	for _, s := range sorted {
		if k := len(out) - 1; k >= 0 && s.Offset <= out[k].end {
			out[k].end = max(out[k].end, s.End())
			continue
		}
		out = append(out, taggedRange{start: s.Offset, end: s.End()})
	}
	out[len(out)-1].emit = true
	return out
}

func kindFor(role string) rangeKind {
	switch role {
	case models.RoleTitle:
		return kindTitle
	case models.RoleSectionHeading:
		return kindSection
	default:
		return kindText
	}
}

// scan walks claimed ranges left to right carrying title, subtitle, section and page
// context, emitting a record at the end of each text range and each closing table range.
func scan(ranges []taggedRange, marks []pageMark, content []rune, tables []models.Table) []models.StructureRecord {
	var (
		mainTitle, subtitle, section string
		page, mi                     int
		records                      []models.StructureRecord
	)

	for _, r := range ranges {
		last := r.end - 1
		for mi < len(marks) && marks[mi].offset <= last {
			page = marks[mi].page
			mi++
		}
		text := string(content[r.start:r.end])

		switch r.kind {
		case kindTitle:
			subtitle = text
			if mainTitle == "" {
				mainTitle = text
			} else if page == 1 {
				mainTitle = strings.Join([]string{mainTitle, text}, "; ")
			}
		case kindSection:
			section = text
		case kindText:
			records = append(records, models.StructureRecord{
				Offset: r.start, End: r.end, Text: text, Type: models.RecordTypeText,
				Title: mainTitle, Subtitle: subtitle, Section: section, PageNumber: page,
			})
		case kindTable:
			if !r.emit {
				continue
			}
			records = append(records, models.StructureRecord{
				Offset: r.start, End: r.end, Text: RenderTableHTML(tables[r.table]), Type: models.RecordTypeTable,
				Title: mainTitle, Subtitle: subtitle, Section: section, PageNumber: page,
			})
		}
	}
	return records
}
