package ports

import (
	"context"

	"github.com/ratebook/core/internal/domain/entities"
)

// PairRepository defines the interface for forex pair storage. Implementations
// own both the in-memory collection and its persistence: every mutating call
// returns only after the full state has been written out.
type PairRepository interface {
	// Insert stores the pair under its id, replacing any existing record.
	// It returns the previous record if one existed, nil otherwise.
	Insert(ctx context.Context, pair entities.ForexPair) (*entities.ForexPair, error)
	Get(ctx context.Context, id uint64) (*entities.ForexPair, error)
	GetAll(ctx context.Context) ([]entities.ForexPair, error)
	// Update replaces the record under pair.ID unconditionally; an unknown id
	// creates the record rather than failing.
	Update(ctx context.Context, pair entities.ForexPair) error
	// Delete removes the record for id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id uint64) error
}

// HistoryRepository defines the interface for the optional mutation history log.
type HistoryRepository interface {
	Record(ctx context.Context, entry entities.PairHistoryEntry) error
}
