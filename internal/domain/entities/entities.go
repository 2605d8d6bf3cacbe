package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrPairNotFound = errors.New("forex pair not found")
)

// HistoryOperation identifies the kind of mutation recorded in the history log.
type HistoryOperation string

const (
	HistoryOperationCreate HistoryOperation = "create"
	HistoryOperationUpdate HistoryOperation = "update"
	HistoryOperationDelete HistoryOperation = "delete"
)

// ForexPair is a quoted currency pair. The id is supplied by the caller and
// acts as the store key; field contents are accepted as-is.
type ForexPair struct {
	ID    uint64  `json:"id"`
	Pair  string  `json:"pair"`
	Price float64 `json:"price"`
}

// PairHistoryEntry is one row of the optional mutation history log.
type PairHistoryEntry struct {
	ID         int64            `json:"id" db:"id"`
	PairID     uint64           `json:"pair_id" db:"pair_id"`
	Pair       string           `json:"pair" db:"pair"`
	Price      float64          `json:"price" db:"price"`
	Operation  HistoryOperation `json:"operation" db:"operation"`
	RecordedAt time.Time        `json:"recorded_at" db:"recorded_at"`
}
