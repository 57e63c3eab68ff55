package domain

import "strings"

// Source tags describe where a chunk came from. They are provenance
// metadata only and never influence ranking.
const (
	SourceDatabase = "database"
	SourceManual   = "manual"
	SourceBulk     = "bulk"
	SourceFile     = "file"
)

// Chunk is the atomic unit stored in the docstore and indexed for
// retrieval. ID and Content are required; everything else is descriptive
// metadata echoed back in results and used when building prompt context.
type Chunk struct {
	// ID is the unique identifier, stable across index rebuilds.
	// Derived from the source document id plus window ordinal, or a
	// random token for document-less ingests.
	ID string `json:"id"`

	// Content is the exact text span that was embedded.
	Content string `json:"content"`

	// Title is the human-readable title of the source document.
	Title string `json:"title,omitempty"`

	// DocType classifies the source document (e.g. "faq", "policy").
	DocType string `json:"doc_type,omitempty"`

	// Category groups documents for display purposes.
	Category string `json:"category,omitempty"`

	// Tags are free-form labels carried through from the source.
	Tags []string `json:"tags,omitempty"`

	// Source records provenance (database, manual, bulk, file).
	Source string `json:"source,omitempty"`
}

// Validate checks the required fields. It is called once at the
// ingestion boundary; consumers past that point may assume a valid chunk.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(c.Content) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ScoredChunk is a single retrieval hit. The matched chunk is embedded
// so its fields read directly off the result.
type ScoredChunk struct {
	Chunk `json:"chunk"`

	// Score is the bounded similarity 1/(1+d) for L2 distance d,
	// in (0,1], monotonically decreasing in distance.
	Score float64 `json:"score"`
}
