package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ratebook/core/internal/adapters/repository"
	"github.com/ratebook/core/internal/application/services"
	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/infrastructure/logger"
)

// recordingHistory captures history entries and can be made to fail.
type recordingHistory struct {
	mu      sync.Mutex
	entries []entities.PairHistoryEntry
	fail    bool
}

func (h *recordingHistory) Record(_ context.Context, entry entities.PairHistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fail {
		return errors.New("history unavailable")
	}
	h.entries = append(h.entries, entry)
	return nil
}

func newTestService(t *testing.T, history *recordingHistory) *services.PairService {
	t.Helper()

	repo := repository.NewFilePairRepository(filepath.Join(t.TempDir(), "database.json"))
	return services.NewPairService(repo, history, logger.NewNop())
}

func TestPairService_MutationsRecordHistory(t *testing.T) {
	history := &recordingHistory{}
	svc := newTestService(t, history)
	ctx := context.Background()

	if err := svc.CreatePair(ctx, entities.ForexPair{ID: 1, Pair: "EUR/USD", Price: 1.08}); err != nil {
		t.Fatalf("CreatePair() error = %v", err)
	}
	if err := svc.UpdatePair(ctx, entities.ForexPair{ID: 1, Pair: "EUR/USD", Price: 1.09}); err != nil {
		t.Fatalf("UpdatePair() error = %v", err)
	}
	if err := svc.DeletePair(ctx, 1); err != nil {
		t.Fatalf("DeletePair() error = %v", err)
	}

	want := []entities.HistoryOperation{
		entities.HistoryOperationCreate,
		entities.HistoryOperationUpdate,
		entities.HistoryOperationDelete,
	}
	if len(history.entries) != len(want) {
		t.Fatalf("recorded %d history entries, want %d", len(history.entries), len(want))
	}
	for i, op := range want {
		if history.entries[i].Operation != op {
			t.Errorf("entry %d operation = %q, want %q", i, history.entries[i].Operation, op)
		}
	}
}

func TestPairService_HistoryFailureDoesNotFailMutation(t *testing.T) {
	history := &recordingHistory{fail: true}
	svc := newTestService(t, history)
	ctx := context.Background()

	if err := svc.CreatePair(ctx, entities.ForexPair{ID: 1, Pair: "EUR/USD", Price: 1.08}); err != nil {
		t.Fatalf("CreatePair() error = %v, want nil despite history failure", err)
	}

	got, err := svc.GetPair(ctx, 1)
	if err != nil {
		t.Fatalf("GetPair() error = %v", err)
	}
	if got.Price != 1.08 {
		t.Errorf("GetPair() price = %v, want 1.08", got.Price)
	}
}

func TestPairService_GetMissingPair(t *testing.T) {
	svc := newTestService(t, &recordingHistory{})

	_, err := svc.GetPair(context.Background(), 99)
	if !errors.Is(err, entities.ErrPairNotFound) {
		t.Errorf("GetPair() error = %v, want ErrPairNotFound", err)
	}
}
