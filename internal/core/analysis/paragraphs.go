package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/markdave123-py/layoutchunker/internal/models"
)

// maxTitleWords bounds the leading line promoted to the document title.
const maxTitleWords = 12

// documentFromPages lays page texts out as one content string. Every blank-line
// separated block becomes a paragraph tagged with its 1-based page; lines inside a
// block are joined with spaces. A short single-line first block becomes the title.
func documentFromPages(pages []string) *models.RawDocument {
	var (
		b      strings.Builder
		offset int
		paras  []models.Paragraph
	)
	for i, page := range pages {
		for _, block := range splitBlocks(page) {
			if offset > 0 {
				b.WriteByte('\n')
				offset++
			}
			n := utf8.RuneCountInString(block)
			p := models.Paragraph{Offset: offset, Length: n, PageNumber: i + 1}
			if len(paras) == 0 && looksLikeTitle(block, page) {
				p.Role = models.RoleTitle
			}
			paras = append(paras, p)
			b.WriteString(block)
			offset += n
		}
	}
	return &models.RawDocument{Content: b.String(), Paragraphs: paras}
}

func splitBlocks(page string) []string {
	page = strings.ReplaceAll(page, "\r\n", "\n")
	var blocks []string
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, " "))
			lines = lines[:0]
		}
	}
	for _, line := range strings.Split(page, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return blocks
}

func looksLikeTitle(block, page string) bool {
	first := strings.TrimSpace(page)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	words := len(strings.Fields(block))
	return strings.Join(strings.Fields(first), " ") == block && words > 0 && words <= maxTitleWords
}
