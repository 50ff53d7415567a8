package vectorstore

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/phuslu/log"

	"aigist/internal/domain"
	"aigist/internal/registry"
)

// ErrNoSnapshot is returned by a Snapshotter when no prior state exists.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshotter persists the serialized store to a durable location.
type Snapshotter interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Store holds all passages and the document registry behind one
// readers-writer lock. Mutations (Add, DeleteDocument, persistence) take
// the writer side so a search never observes a partially-mutated store.
//
// Similarity search is a linear scan, fine into the low tens of thousands
// of passages. Beyond that an ANN index replaces the scan.
type Store struct {
	mu        sync.RWMutex
	dimension int
	passages  []domain.Passage
	registry  *registry.Registry
	dirty     bool
	snaps     Snapshotter
	logger    log.Logger
}

// New creates a store configured for the given embedding dimensionality and
// restores prior state from the snapshotter. A nil snapshotter makes the
// store ephemeral. A missing snapshot yields an empty store; a corrupt one
// is logged and discarded; a snapshot built with a different dimensionality
// fails loudly with ErrDimensionMismatch.
func New(dimension int, snaps Snapshotter, logger log.Logger) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	s := &Store{
		dimension: dimension,
		registry:  registry.New(),
		snaps:     snaps,
		logger:    logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends one document's passages and registers the document, as a
// single transaction. Vectors must already be computed: embedding never
// happens under the store lock.
func (s *Store) Add(doc domain.Document, passages []domain.Passage) error {
	for _, p := range passages {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("%w: passage %s has %d dimensions, store expects %d",
				domain.ErrDimensionMismatch, p.ID, len(p.Vector), s.dimension)
		}
	}
	doc.ChunkCount = len(passages)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Register(doc); err != nil {
		return err
	}
	s.passages = append(s.passages, passages...)
	s.dirty = true
	s.persistLocked()

	s.logger.Info().
		Str("doc_id", doc.DocID).
		Int("chunks", len(passages)).
		Int("total_passages", len(s.passages)).
		Msg("document added to vector store")
	return nil
}

// DeleteDocument removes a document and every passage it owns. The removal
// is atomic: a concurrent search sees either all of the document's passages
// or none of them.
func (s *Store) DeleteDocument(docID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.registry.Unregister(docID)
	if err != nil {
		return 0, err
	}

	kept := s.passages[:0]
	removed := 0
	for _, p := range s.passages {
		if p.DocumentID == docID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.passages = kept
	s.dirty = true
	s.persistLocked()

	s.logger.Info().
		Str("doc_id", docID).
		Str("title", doc.Title).
		Int("chunks_removed", removed).
		Msg("document deleted from vector store")
	return removed, nil
}

// Search returns up to topK passages ranked by cosine similarity to the
// query vector, excluding results below minSimilarity. Filtering happens
// after ranking, so results are always similarity-sorted. Ties break by
// lowest passage position, then insertion order.
func (s *Store) Search(query []float32, topK int, minSimilarity float64) ([]domain.SearchResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.passages) == 0 {
		return nil, nil
	}

	type scored struct {
		idx int
		sim float64
	}
	all := make([]scored, len(s.passages))
	for i := range s.passages {
		all[i] = scored{idx: i, sim: cosine(query, s.passages[i].Vector)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].sim != all[j].sim {
			return all[i].sim > all[j].sim
		}
		return s.passages[all[i].idx].Position < s.passages[all[j].idx].Position
	})

	results := make([]domain.SearchResult, 0, topK)
	for _, sc := range all {
		if len(results) == topK {
			break
		}
		if sc.sim < minSimilarity {
			break // ranked descending, nothing below clears the floor
		}
		results = append(results, domain.SearchResult{
			Passage:    s.passages[sc.idx],
			Similarity: sc.sim,
		})
	}
	return results, nil
}

// Document returns the registry entry for a document ID.
func (s *Store) Document(docID string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Get(docID)
}

// Documents lists registered documents, most recently uploaded first.
func (s *Store) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.List()
}

// Stats reports current store contents.
func (s *Store) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		TotalPassages:  len(s.passages),
		TotalDocuments: s.registry.Len(),
		Dimension:      s.dimension,
	}
}

// Persist flushes unsaved mutations. Called on shutdown and whenever a
// caller wants to retry after a failed post-mutation save.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.snaps == nil {
		return nil
	}
	return s.saveLocked()
}

// persistLocked saves after a mutation. A save failure keeps the in-memory
// store authoritative: the mutation is not rolled back, the dirty flag
// stays set for a later retry, and the failure is logged loudly.
func (s *Store) persistLocked() {
	if s.snaps == nil {
		return
	}
	if err := s.saveLocked(); err != nil {
		s.logger.Error().Err(err).
			Int("passages", len(s.passages)).
			Msg("vector store persistence failed; in-memory state retained, will retry")
	}
}

func (s *Store) saveLocked() error {
	data, err := s.encodeLocked()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.snaps.Save(data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.dirty = false
	return nil
}

// cosine computes cosine similarity with a zero-norm guard: a zero vector
// compares as 0, never a division fault.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
