package models

import (
	"path"

	"github.com/google/uuid"
)

// Paragraph roles reported by the layout analysis service.
const (
	RoleTitle          = "title"
	RoleSectionHeading = "sectionHeading"
)

// Table cell kinds rendered as header cells.
const (
	CellKindColumnHeader = "columnHeader"
	CellKindRowHeader    = "rowHeader"
	CellKindContent      = "content"
)

// Structure record types.
const (
	RecordTypeText  = "text"
	RecordTypeTable = "table"
)

// FileClassText is the only file class this pipeline emits.
const FileClassText = "text"

// Span is an (offset, length) range into RawDocument.Content, in characters.
type Span struct {
	Offset int `json:"offsetStart"`
	Length int `json:"length"`
}

// End returns the exclusive end offset.
func (s Span) End() int { return s.Offset + s.Length }

// Paragraph is one layout paragraph. Role is empty for body text.
type Paragraph struct {
	Offset     int    `json:"offsetStart"`
	Length     int    `json:"length"`
	Role       string `json:"role,omitempty"`
	PageNumber int    `json:"pageNumber"`
}

// TableCell is one cell of an analyzed table.
type TableCell struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	RowSpan int    `json:"rowSpan"`
	ColSpan int    `json:"colSpan"`
	Kind    string `json:"kind,omitempty"`
	Content string `json:"content"`
}

// Table is one analyzed table with the content spans it covers.
type Table struct {
	Spans []Span      `json:"spans"`
	Cells []TableCell `json:"cells"`
}

// RawDocument is the layout-analysis output for one document. It is read-only once produced.
type RawDocument struct {
	Content    string      `json:"content"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
}

// StructureRecord is one contiguous, classified unit of content with its heading context.
// Offset and End are character offsets into the source content; End is exclusive.
type StructureRecord struct {
	Offset     int
	End        int
	Text       string
	Type       string
	Title      string
	Subtitle   string
	Section    string
	PageNumber int
}

// Chunk is the persisted wire form of one planned chunk.
type Chunk struct {
	FileName          string `json:"file_name"`
	FileURI           string `json:"file_uri"`
	ProcessedDatetime string `json:"processed_datetime"`
	ChunkFile         string `json:"chunk_file"`
	FileClass         string `json:"file_class"`
	Folder            string `json:"folder"`
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle"`
	Section           string `json:"section"`
	Pages             []int  `json:"pages"`
	TokenCount        int    `json:"token_count"`
	Content           string `json:"content"`
}

// EnrichedChunk is a Chunk plus enrichment output. Context is omitted from JSON when the
// completion call failed.
type EnrichedChunk struct {
	Chunk
	Keyphrases    []string  `json:"keyphrases"`
	Entities      []string  `json:"entities"`
	ContentVector []float32 `json:"contentVector"`
	Context       *string   `json:"context,omitempty"`
}

// SourceDocument identifies the blob a chunk set was planned from.
type SourceDocument struct {
	FileName string
	FileURI  string
	Folder   string
}

// UpsertResult reports the index outcome for one enriched chunk.
type UpsertResult struct {
	Key       string
	ChunkFile string
	Succeeded bool
	Err       error
}

// chunkKeySpace namespaces index keys derived from chunk file names.
var chunkKeySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("layoutchunker/chunk"))

// IndexKey is the stable search index key for a chunk: a UUIDv5 of its source
// (folder and file name) and chunk_file. Re-indexing the same document overwrites
// its previous chunks; sources sharing a base name in other folders or with another
// extension get their own keys.
func (c Chunk) IndexKey() string {
	return uuid.NewSHA1(chunkKeySpace, []byte(c.SourcePath()+"#"+c.ChunkFile)).String()
}

// SourcePath is the source blob's location relative to its root folder.
func (c Chunk) SourcePath() string {
	return path.Join(c.Folder, c.FileName)
}
