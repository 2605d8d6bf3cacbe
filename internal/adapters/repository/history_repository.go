package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/ports"
)

// PostgresHistoryRepository implements the mutation history log on Postgres.
type PostgresHistoryRepository struct {
	db *sqlx.DB
}

// NewPostgresHistoryRepository creates a new history repository
func NewPostgresHistoryRepository(db *sqlx.DB) ports.HistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) Record(ctx context.Context, entry entities.PairHistoryEntry) error {
	query := `
		INSERT INTO pair_history (pair_id, pair, price, operation)
		VALUES ($1, $2, $3, $4)`

	// pair_id is NUMERIC(20,0); passing the decimal string keeps the full
	// uint64 range representable.
	_, err := r.db.ExecContext(ctx, query,
		strconv.FormatUint(entry.PairID, 10), entry.Pair, entry.Price, entry.Operation)
	if err != nil {
		return fmt.Errorf("record pair history: %w", err)
	}

	return nil
}

// NoopHistoryRepository discards history entries; used when history is disabled.
type NoopHistoryRepository struct{}

// NewNoopHistoryRepository creates a history repository that records nothing
func NewNoopHistoryRepository() ports.HistoryRepository {
	return &NoopHistoryRepository{}
}

func (r *NoopHistoryRepository) Record(context.Context, entities.PairHistoryEntry) error {
	return nil
}
