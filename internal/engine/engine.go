// Package engine implements the retrieval-augmented Q&A engine: document
// ingestion transactions and grounded question answering over the vector
// store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"aigist/internal/domain"
	"aigist/internal/vectorstore"
)

// Config carries the retrieval tuning knobs. TopK and MinSimilarity are
// configuration, tuned empirically, not behavior contracts.
type Config struct {
	TopK            int
	MinSimilarity   float64
	ContextBudget   int // characters of grounding context, ~4 chars per token
	AnswerMaxTokens int
	PreviewLength   int
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = 4
	}
	if c.MinSimilarity < 0 {
		c.MinSimilarity = 0
	}
	if c.ContextBudget <= 0 {
		c.ContextBudget = 8000
	}
	if c.AnswerMaxTokens <= 0 {
		c.AnswerMaxTokens = 500
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = 160
	}
}

// Engine wires chunker, embedder, completer and vector store together. It
// implements domain.Engine.
type Engine struct {
	chunker   domain.Chunker
	embedder  domain.Embedder
	completer domain.Completer
	store     *vectorstore.Store
	cfg       Config
	logger    log.Logger
}

func New(chunker domain.Chunker, embedder domain.Embedder, completer domain.Completer, store *vectorstore.Store, cfg Config, logger log.Logger) *Engine {
	cfg.applyDefaults()
	return &Engine{
		chunker:   chunker,
		embedder:  embedder,
		completer: completer,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// NewDocumentID generates a unique document ID.
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// IngestDocument chunks, embeds and stores one document as a single
// transaction. Embedding runs before the store lock is taken; on any
// failure the store is left untouched, so partial ingestion is never
// observable to a search. Once started, ingestion runs to completion even
// if the caller goes away.
func (e *Engine) IngestDocument(ctx context.Context, req domain.IngestionRequest) (*domain.IngestResult, error) {
	text := strings.TrimSpace(req.Text())
	if text == "" {
		return nil, &domain.IngestionError{Reason: "no text content"}
	}

	chunks, truncated := e.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, &domain.IngestionError{Reason: "no text content"}
	}
	if truncated {
		e.logger.Warn().
			Int("chunks", len(chunks)).
			Msg("input exceeded chunk ceiling, trailing content discarded")
	}

	vectors, err := e.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, &domain.IngestionError{Reason: "embedding failed", Err: err}
	}
	if len(vectors) != len(chunks) {
		return nil, &domain.IngestionError{
			Reason: fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)),
		}
	}

	docID := req.DocID()
	if docID == "" {
		docID = NewDocumentID()
	}
	title := strings.TrimSpace(req.Title())
	if title == "" {
		title = fmt.Sprintf("Text Entry %s", time.Now().Format("2006-01-02 15:04"))
	}

	doc := domain.Document{
		DocID:      docID,
		Title:      title,
		SourceType: req.Source(),
		UploadTime: time.Now().UTC(),
	}
	passages := make([]domain.Passage, len(chunks))
	for i := range chunks {
		passages[i] = domain.Passage{
			ID:         fmt.Sprintf("%s:%d", docID, i),
			DocumentID: docID,
			Text:       chunks[i],
			Position:   i,
			Vector:     vectors[i],
		}
	}

	if err := e.store.Add(doc, passages); err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			return nil, err
		}
		return nil, &domain.IngestionError{Reason: "store rejected document", Err: err}
	}

	e.logger.Info().
		Str("doc_id", docID).
		Str("title", title).
		Str("source_type", string(req.Source())).
		Int("chunks", len(chunks)).
		Msg("document ingested")
	return &domain.IngestResult{
		DocID:      docID,
		Title:      title,
		ChunkCount: len(passages),
		Truncated:  truncated,
	}, nil
}

// DeleteDocument removes a document and all its passages.
func (e *Engine) DeleteDocument(ctx context.Context, docID string) (int, error) {
	return e.store.DeleteDocument(docID)
}

// ListDocuments returns registered documents, most recent first.
func (e *Engine) ListDocuments(ctx context.Context) []domain.Document {
	return e.store.Documents()
}

// Stats reports the current store contents.
func (e *Engine) Stats(ctx context.Context) domain.StoreStats {
	return e.store.Stats()
}

// AnswerQuestion runs one query through embedding, retrieval and
// composition. Grounding is a hard requirement: when nothing clears the
// similarity floor the caller gets ErrNoRelevantContent, never an answer
// fabricated from the model's own knowledge.
func (e *Engine) AnswerQuestion(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := e.store.Search(vector, e.cfg.TopK, e.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		e.logger.Debug().Str("question", preview(question, 80)).Msg("retrieval found no relevant content")
		return nil, domain.ErrNoRelevantContent
	}

	used, contextBlock := e.composeContext(results)

	answer, err := e.completer.Complete(ctx, qaSystemPrompt, qaPrompt(contextBlock, question), e.cfg.AnswerMaxTokens)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("sources", len(used)).
		Float64("top_similarity", used[0].Similarity).
		Msg("question answered")
	return &domain.Answer{Text: answer, Sources: e.attribute(used)}, nil
}

// Summarize generates a summary of text at the requested detail level.
func (e *Engine) Summarize(ctx context.Context, text string, level domain.SummaryLevel) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text provided for summarization")
	}
	settings := settingsFor(level)
	if runes := []rune(text); len(runes) > settings.maxInput {
		text = string(runes[:settings.maxInput]) + "..."
	}
	return e.completer.Complete(ctx, "", settings.prompt(text), settings.maxTokens)
}

// composeContext assembles the grounding context from results ordered by
// descending similarity, stopping before the character budget is exceeded:
// the lowest-similarity passages are dropped first. At least one passage is
// always included, hard-truncated to the budget if necessary.
func (e *Engine) composeContext(results []domain.SearchResult) ([]domain.SearchResult, string) {
	var blocks []string
	var used []domain.SearchResult
	total := 0
	for _, r := range results {
		block := fmt.Sprintf("[%s]\n%s", e.titleFor(r.Passage.DocumentID), r.Passage.Text)
		if len(used) > 0 && total+len(block) > e.cfg.ContextBudget {
			break
		}
		if len(used) == 0 && len(block) > e.cfg.ContextBudget {
			if r := []rune(block); len(r) > e.cfg.ContextBudget {
				block = string(r[:e.cfg.ContextBudget])
			}
		}
		blocks = append(blocks, block)
		used = append(used, r)
		total += len(block) + 2
	}
	return used, strings.Join(blocks, "\n\n")
}

func (e *Engine) attribute(used []domain.SearchResult) []domain.Source {
	sources := make([]domain.Source, len(used))
	for i, r := range used {
		sources[i] = domain.Source{
			DocumentTitle: e.titleFor(r.Passage.DocumentID),
			Similarity:    r.Similarity,
			TextPreview:   preview(r.Passage.Text, e.cfg.PreviewLength),
		}
	}
	return sources
}

func (e *Engine) titleFor(docID string) string {
	if doc, ok := e.store.Document(docID); ok {
		return doc.Title
	}
	return docID
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
