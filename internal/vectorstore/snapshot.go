package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"aigist/internal/domain"
	"aigist/internal/registry"
)

const snapshotVersion = 1

// snapshot is the single durable blob: the full passage collection and the
// document registry, tagged with the embedding dimensionality so a store
// built with one model is never silently mixed with another's vectors.
type snapshot struct {
	Version   int               `json:"version"`
	Dimension int               `json:"dimension"`
	Passages  []domain.Passage  `json:"passages"`
	Documents []domain.Document `json:"documents"`
}

func (s *Store) encodeLocked() ([]byte, error) {
	return json.Marshal(snapshot{
		Version:   snapshotVersion,
		Dimension: s.dimension,
		Passages:  s.passages,
		Documents: s.registry.All(),
	})
}

// load restores prior state. Missing snapshot: start empty. Corrupt
// snapshot: log loudly, start empty — losing the cache is preferable to
// refusing to start. Dimensionality mismatch: fail loudly, a silently mixed
// store would corrupt every similarity ranking.
func (s *Store) load() error {
	if s.snaps == nil {
		return nil
	}
	data, err := s.snaps.Load()
	if errors.Is(err, ErrNoSnapshot) {
		s.logger.Debug().Msg("no prior vector store snapshot, starting empty")
		return nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("vector store snapshot unreadable, starting empty")
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.reportCorrupt(fmt.Errorf("%w: %v", domain.ErrStoreCorrupt, err))
		return nil
	}
	if snap.Version != snapshotVersion {
		s.reportCorrupt(fmt.Errorf("%w: unsupported snapshot version %d", domain.ErrStoreCorrupt, snap.Version))
		return nil
	}
	if len(snap.Passages) > 0 && snap.Dimension != s.dimension {
		return fmt.Errorf("%w: snapshot built with dimension %d, store configured for %d",
			domain.ErrDimensionMismatch, snap.Dimension, s.dimension)
	}

	reg := registryFromDocuments(snap.Documents)
	if reg == nil {
		s.reportCorrupt(fmt.Errorf("%w: duplicate document entries", domain.ErrStoreCorrupt))
		return nil
	}
	for _, p := range snap.Passages {
		if len(p.Vector) != s.dimension {
			s.reportCorrupt(fmt.Errorf("%w: passage %s has %d dimensions", domain.ErrStoreCorrupt, p.ID, len(p.Vector)))
			return nil
		}
	}

	s.passages = snap.Passages
	s.registry = reg
	s.logger.Info().
		Int("passages", len(snap.Passages)).
		Int("documents", len(snap.Documents)).
		Int("dimension", s.dimension).
		Msg("vector store restored from snapshot")
	return nil
}

func registryFromDocuments(docs []domain.Document) *registry.Registry {
	reg := registry.New()
	for _, d := range docs {
		if err := reg.Register(d); err != nil {
			return nil
		}
	}
	return reg
}

func (s *Store) reportCorrupt(err error) {
	s.logger.Error().Err(err).Msg("vector store snapshot corrupt, resetting to empty store")
	s.passages = nil
}
