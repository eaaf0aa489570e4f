// Package chunking partitions ordered structure records into size-bounded chunks.
//
// Records are packed greedily until adding the next one would reach the target size
// or its title, subtitle or section differs from the record before it. A record that
// alone reaches the target is split on its own: tables row by row with the header
// repeated, text on sentence boundaries.
package chunking

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

type Options struct {
	// TargetTokens is the exclusive upper bound for packed chunks, in CountTokens units.
	TargetTokens int
	// UnprocessedFolder and ProcessedFolder are the path segments swapped in file_uri.
	UnprocessedFolder string
	ProcessedFolder   string
	Now               func() time.Time
}

type Planner struct {
	target      int
	unprocessed string
	processed   string
	now         func() time.Time
}

func NewPlanner(opts Options) (*Planner, error) {
	if opts.TargetTokens <= 0 {
		return nil, core.Validationf("target tokens must be positive, got %d", opts.TargetTokens)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Planner{
		target:      opts.TargetTokens,
		unprocessed: opts.UnprocessedFolder,
		processed:   opts.ProcessedFolder,
		now:         opts.Now,
	}, nil
}

// Plan returns every chunk for records in emission order.
func (p *Planner) Plan(records []models.StructureRecord, src models.SourceDocument) ([]models.Chunk, error) {
	var out []models.Chunk
	err := p.PlanFunc(records, src, func(c models.Chunk) error {
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlanFunc hands each chunk to emit as soon as it is complete. Input is validated
// before the first emit; an emit error stops planning and is returned as is.
func (p *Planner) PlanFunc(records []models.StructureRecord, src models.SourceDocument, emit func(models.Chunk) error) error {
	if err := validate(records, src); err != nil {
		return err
	}

	s := &session{
		planner:  p,
		emit:     emit,
		base:     strings.TrimSuffix(path.Base(src.FileName), path.Ext(src.FileName)),
		src:      src,
		fileURI:  rewriteFolder(src.FileURI, p.unprocessed, p.processed),
		datetime: p.now().UTC().Format(time.RFC3339),
	}
	for _, r := range records {
		if err := s.add(r); err != nil {
			return err
		}
	}
	return s.flush()
}

func validate(records []models.StructureRecord, src models.SourceDocument) error {
	if src.FileName == "" {
		return core.Validationf("source file name is empty")
	}
	if len(records) == 0 {
		return core.Structuref("no structure records to plan")
	}
	blank := true
	for i, r := range records {
		if r.Type != models.RecordTypeText && r.Type != models.RecordTypeTable {
			return core.Validationf("record %d has unknown type %q", i, r.Type)
		}
		if strings.TrimSpace(r.Text) != "" {
			blank = false
		}
	}
	if blank {
		return core.Structuref("all %d structure records are blank", len(records))
	}
	return nil
}

// rewriteFolder swaps the first /from/ path segment in uri for /to/.
func rewriteFolder(uri, from, to string) string {
	if from == "" || from == to {
		return uri
	}
	return strings.Replace(uri, "/"+from+"/", "/"+to+"/", 1)
}

type heading struct {
	title, subtitle, section string
}

func headingOf(r models.StructureRecord) heading {
	return heading{title: r.Title, subtitle: r.Subtitle, section: r.Section}
}

// session is the state of one Plan call. carriedHeader is the <thead> of the last
// split table. It only reaches a table that directly follows another table and is
// never shared between calls.
type session struct {
	planner  *Planner
	emit     func(models.Chunk) error
	base     string
	src      models.SourceDocument
	fileURI  string
	datetime string

	seq           int
	carriedHeader string
	prevTable     bool

	prev    heading
	hasPrev bool

	parts []string
	size  int
	pages []int
	ctx   heading
}

func (s *session) add(r models.StructureRecord) error {
	if strings.TrimSpace(r.Text) == "" {
		return nil
	}
	isTable := r.Type == models.RecordTypeTable
	if !isTable || !s.prevTable {
		s.carriedHeader = ""
	}
	s.prevTable = isTable

	size := CountTokens(r.Text)
	h := headingOf(r)

	changed := s.hasPrev && h != s.prev
	if (s.size+size >= s.planner.target || changed) && len(s.parts) > 0 {
		if err := s.flush(); err != nil {
			return err
		}
	}
	s.prev, s.hasPrev = h, true

	if size >= s.planner.target {
		return s.split(r)
	}

	if len(s.parts) == 0 {
		s.ctx = h
	}
	s.parts = append(s.parts, r.Text)
	s.size += size
	if r.PageNumber != 0 && !slices.Contains(s.pages, r.PageNumber) {
		s.pages = append(s.pages, r.PageNumber)
	}
	return nil
}

func (s *session) flush() error {
	if len(s.parts) == 0 {
		return nil
	}
	s.seq++
	c := s.chunk(fmt.Sprintf("%s-%d.json", s.base, s.seq), strings.Join(s.parts, "\n"), s.size, s.ctx, s.pages)

	s.parts, s.size, s.pages = nil, 0, nil
	return s.emit(c)
}

func (s *session) split(r models.StructureRecord) error {
	var pieces []string
	if r.Type == models.RecordTypeTable {
		if tp, ok := splitTable(r.Text, s.planner.target, &s.carriedHeader); ok {
			pieces = tp
		}
	}
	if pieces == nil {
		pieces = splitText(r.Text, s.planner.target)
	}

	var pages []int
	if r.PageNumber != 0 {
		pages = []int{r.PageNumber}
	}

	s.seq++
	for m, piece := range pieces {
		name := fmt.Sprintf("%s-%d-%d.json", s.base, s.seq, m+1)
		if err := s.emit(s.chunk(name, piece, CountTokens(piece), headingOf(r), pages)); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) chunk(name, content string, tokens int, h heading, pages []int) models.Chunk {
	return models.Chunk{
		FileName:          s.src.FileName,
		FileURI:           s.fileURI,
		ProcessedDatetime: s.datetime,
		ChunkFile:         name,
		FileClass:         models.FileClassText,
		Folder:            s.src.Folder,
		Title:             h.title,
		Subtitle:          h.subtitle,
		Section:           h.section,
		Pages:             append([]int{}, pages...),
		TokenCount:        tokens,
		Content:           content,
	}
}
