package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion rejects empty or whitespace-only questions before any
	// upstream call is made.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrNoRelevantContent means retrieval found nothing above the similarity
	// floor. The engine never falls back to ungrounded model knowledge.
	ErrNoRelevantContent = errors.New("no relevant content found")

	// ErrEmbeddingUnavailable is returned after the embedding client's retry
	// ceiling is exhausted or a permanent upstream failure occurs.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable is returned when the language model completion
	// call fails.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	ErrDocumentNotFound  = errors.New("document not found")
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrDimensionMismatch guards against mixing vectors from incompatible
	// embedding models in one store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreCorrupt marks an unreadable persisted snapshot. Load recovers by
	// resetting to an empty store; the error is logged, not propagated.
	ErrStoreCorrupt = errors.New("vector store snapshot corrupt")
)

// IngestionError reports a failed ingestion. The store is left unchanged
// whenever this is returned.
type IngestionError struct {
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed: %s: %v", e.Reason, e.Err)
	}
	return "ingestion failed: " + e.Reason
}

func (e *IngestionError) Unwrap() error { return e.Err }
