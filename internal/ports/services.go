package ports

import (
	"context"

	"github.com/ratebook/core/internal/domain/entities"
)

// PairService interface for forex pair operations
type PairService interface {
	CreatePair(ctx context.Context, pair entities.ForexPair) error
	GetPair(ctx context.Context, id uint64) (*entities.ForexPair, error)
	ListPairs(ctx context.Context) ([]entities.ForexPair, error)
	UpdatePair(ctx context.Context, pair entities.ForexPair) error
	DeletePair(ctx context.Context, id uint64) error
}
