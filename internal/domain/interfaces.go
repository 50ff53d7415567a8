package domain

import "context"

// Chunker splits raw text into bounded, overlapping passages suitable for
// embedding. The second return value reports whether the chunk ceiling was
// hit and trailing content discarded.
type Chunker interface {
	Chunk(text string) (chunks []string, truncated bool)
}

// Embedder converts text into fixed-dimension vectors. EmbedBatch preserves
// input order and length (one vector per input text).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Completer generates a language-model completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// SummaryLevel selects how detailed a generated summary should be.
type SummaryLevel string

const (
	SummaryQuick    SummaryLevel = "quick"
	SummaryStandard SummaryLevel = "standard"
	SummaryDetailed SummaryLevel = "detailed"
)

// Engine is the request/response contract exposed to external callers
// (HTTP handlers, console).
type Engine interface {
	IngestDocument(ctx context.Context, req IngestionRequest) (*IngestResult, error)
	DeleteDocument(ctx context.Context, docID string) (chunksRemoved int, err error)
	ListDocuments(ctx context.Context) []Document
	AnswerQuestion(ctx context.Context, question string) (*Answer, error)
	Summarize(ctx context.Context, text string, level SummaryLevel) (string, error)
	Stats(ctx context.Context) StoreStats
}
