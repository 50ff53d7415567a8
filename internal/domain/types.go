package domain

import "time"

// SourceType tags where a document's text came from.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// Passage is the atomic retrieval unit: a bounded fragment of a document
// together with its embedding vector. The vector is immutable once computed.
type Passage struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	Position   int       `json:"position"`
	Vector     []float32 `json:"vector"`
}

// Document is a logical ingested unit. ChunkCount always equals the number
// of passages in the vector store owned by this document.
type Document struct {
	DocID      string     `json:"doc_id"`
	Title      string     `json:"title"`
	SourceType SourceType `json:"source_type"`
	UploadTime time.Time  `json:"upload_time"`
	ChunkCount int        `json:"chunk_count"`
}

// SearchResult is a passage matched by similarity search.
type SearchResult struct {
	Passage    Passage
	Similarity float64
}

// Source attributes part of an answer to a stored passage.
type Source struct {
	DocumentTitle string  `json:"document_title"`
	Similarity    float64 `json:"similarity"`
	TextPreview   string  `json:"text_preview"`
}

// Answer is a grounded response to a question.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
	Truncated  bool   `json:"truncated"`
	Summary    string `json:"summary,omitempty"`
}

// StoreStats describes the current vector store contents.
type StoreStats struct {
	TotalPassages  int `json:"total_passages"`
	TotalDocuments int `json:"total_documents"`
	Dimension      int `json:"dimension"`
}
