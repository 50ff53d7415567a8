package registry

import (
	"sort"

	"aigist/internal/domain"
)

// Registry tracks logical documents distinct from their vector passages.
// It carries no lock of its own: the vector store mutates it under its
// writer lock so registry and passages can never drift apart.
type Registry struct {
	docs  map[string]domain.Document
	order []string // insertion order, for stable tie-breaking in List
}

func New() *Registry {
	return &Registry{docs: make(map[string]domain.Document)}
}

// Register adds a document. IDs are generated so that collisions are
// astronomically unlikely, but duplicates are still rejected.
func (r *Registry) Register(doc domain.Document) error {
	if _, ok := r.docs[doc.DocID]; ok {
		return domain.ErrDuplicateDocument
	}
	r.docs[doc.DocID] = doc
	r.order = append(r.order, doc.DocID)
	return nil
}

// Unregister removes a document, returning its last registered state.
func (r *Registry) Unregister(docID string) (domain.Document, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	delete(r.docs, docID)
	for i, id := range r.order {
		if id == docID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return doc, nil
}

func (r *Registry) Get(docID string) (domain.Document, bool) {
	doc, ok := r.docs[docID]
	return doc, ok
}

// List returns documents ordered by upload time descending, most recent
// first. Equal timestamps keep insertion order, so the listing is stable
// for a fixed dataset.
func (r *Registry) List() []domain.Document {
	out := make([]domain.Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadTime.After(out[j].UploadTime)
	})
	return out
}

func (r *Registry) Len() int { return len(r.docs) }

// TotalChunks sums chunk counts across all documents. It always equals the
// store's passage count.
func (r *Registry) TotalChunks() int {
	total := 0
	for _, doc := range r.docs {
		total += doc.ChunkCount
	}
	return total
}

// All returns documents in insertion order, for snapshot serialization.
func (r *Registry) All() []domain.Document {
	out := make([]domain.Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out
}
