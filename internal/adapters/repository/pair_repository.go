package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/ports"
)

// storeDocument is the on-disk shape of the store. Integer map keys marshal as
// stringified decimals, keeping the file readable by previous deployments.
type storeDocument struct {
	ForexPairs map[uint64]entities.ForexPair `json:"forex_pairs"`
}

// FilePairRepository implements ports.PairRepository with an in-memory map
// flushed wholesale to a single JSON file on every mutation. One mutex covers
// the in-memory operation and the file write, so concurrent calls are fully
// serialized against both memory and disk.
type FilePairRepository struct {
	mu    sync.Mutex
	path  string
	pairs map[uint64]entities.ForexPair
}

// NewFilePairRepository creates an empty repository persisting to path.
// Call Load to populate it from an existing file.
func NewFilePairRepository(path string) *FilePairRepository {
	return &FilePairRepository{
		path:  path,
		pairs: make(map[uint64]entities.ForexPair),
	}
}

// Load reads and parses the persistence file into the repository, replacing
// any in-memory state. It fails if the file is missing, unreadable or not
// valid JSON of the expected shape; the in-memory state is left untouched on
// failure so callers can fall back to an empty store.
func (r *FilePairRepository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse store file: %w", err)
	}

	if doc.ForexPairs == nil {
		doc.ForexPairs = make(map[uint64]entities.ForexPair)
	}
	r.pairs = doc.ForexPairs

	return nil
}

// Insert stores the pair under its id, replacing any existing record, and
// persists the full store before returning. The previous record is returned
// if one existed.
func (r *FilePairRepository) Insert(_ context.Context, pair entities.ForexPair) (*entities.ForexPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *entities.ForexPair
	if existing, ok := r.pairs[pair.ID]; ok {
		prev := existing
		previous = &prev
	}
	r.pairs[pair.ID] = pair

	if err := r.saveLocked(); err != nil {
		return previous, err
	}
	return previous, nil
}

func (r *FilePairRepository) Get(_ context.Context, id uint64) (*entities.ForexPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair, ok := r.pairs[id]
	if !ok {
		return nil, entities.ErrPairNotFound
	}
	return &pair, nil
}

// GetAll returns every record; order follows map iteration and is not stable
// across calls.
func (r *FilePairRepository) GetAll(_ context.Context) ([]entities.ForexPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pairs := make([]entities.ForexPair, 0, len(r.pairs))
	for _, pair := range r.pairs {
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// Update replaces the record under pair.ID unconditionally and persists the
// full store. An unknown id creates the record rather than failing.
func (r *FilePairRepository) Update(_ context.Context, pair entities.ForexPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pairs[pair.ID] = pair
	return r.saveLocked()
}

// Delete removes the record for id and persists the full store. Deleting an
// absent id still triggers a persistence write, matching the original
// behavior of saving after every delete request.
func (r *FilePairRepository) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pairs, id)
	return r.saveLocked()
}

// saveLocked serializes the entire store and overwrites the persistence file.
// The write goes through a temp file in the same directory followed by a
// rename, so a crash mid-write never leaves a truncated file. Callers must
// hold r.mu. A failed save is not rolled back against the in-memory state.
func (r *FilePairRepository) saveLocked() error {
	data, err := json.Marshal(storeDocument{ForexPairs: r.pairs})
	if err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".ratebook-*")
	if err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write store file: %w", err)
	}

	return nil
}

var _ ports.PairRepository = (*FilePairRepository)(nil)
