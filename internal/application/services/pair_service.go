package services

import (
	"context"
	"fmt"

	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/infrastructure/logger"
	"github.com/ratebook/core/internal/ports"
)

// PairService handles forex pair operations
type PairService struct {
	pairRepo    ports.PairRepository
	historyRepo ports.HistoryRepository
	logger      *logger.Logger
}

// NewPairService creates a new pair service
func NewPairService(pairRepo ports.PairRepository, historyRepo ports.HistoryRepository, logger *logger.Logger) *PairService {
	return &PairService{
		pairRepo:    pairRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// CreatePair stores the pair, replacing any existing record under the same id.
func (s *PairService) CreatePair(ctx context.Context, pair entities.ForexPair) error {
	previous, err := s.pairRepo.Insert(ctx, pair)
	if err != nil {
		return fmt.Errorf("failed to create pair: %w", err)
	}

	if previous != nil {
		s.logger.Debug("Pair replaced on create", "pair_id", pair.ID, "previous_price", previous.Price)
	}

	s.recordHistory(ctx, entities.HistoryOperationCreate, pair)
	return nil
}

// GetPair returns the pair for id, or entities.ErrPairNotFound.
func (s *PairService) GetPair(ctx context.Context, id uint64) (*entities.ForexPair, error) {
	return s.pairRepo.Get(ctx, id)
}

// ListPairs returns all stored pairs in unspecified order.
func (s *PairService) ListPairs(ctx context.Context) ([]entities.ForexPair, error) {
	return s.pairRepo.GetAll(ctx)
}

// UpdatePair replaces the record under pair.ID. An unknown id silently
// creates the record.
func (s *PairService) UpdatePair(ctx context.Context, pair entities.ForexPair) error {
	if err := s.pairRepo.Update(ctx, pair); err != nil {
		return fmt.Errorf("failed to update pair: %w", err)
	}

	s.recordHistory(ctx, entities.HistoryOperationUpdate, pair)
	return nil
}

// DeletePair removes the record for id; deleting an absent id is not an error.
func (s *PairService) DeletePair(ctx context.Context, id uint64) error {
	if err := s.pairRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
	}

	s.recordHistory(ctx, entities.HistoryOperationDelete, entities.ForexPair{ID: id})
	return nil
}

// recordHistory appends the mutation to the history log. Best effort: a
// failure is logged and never surfaced to the caller, since the store itself
// already committed.
func (s *PairService) recordHistory(ctx context.Context, op entities.HistoryOperation, pair entities.ForexPair) {
	entry := entities.PairHistoryEntry{
		PairID:    pair.ID,
		Pair:      pair.Pair,
		Price:     pair.Price,
		Operation: op,
	}

	if err := s.historyRepo.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record pair history", "error", err, "pair_id", pair.ID, "operation", op)
	}
}

var _ ports.PairService = (*PairService)(nil)
