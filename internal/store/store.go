// Package store defines the persistence-store contract the template engine
// consults for Request-chain history, and a simple in-memory implementation.
// Only the contract is used by the engine (spec §1); a real deployment might
// back it with SQLite or similar, as the original implementation does.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Exchange is a request/response pair recorded in the persistence layer.
type Exchange struct {
	ID          uuid.UUID
	RecipeID    string
	RequestBody []byte
	Status      int
	Headers     map[string]string
	Body        []byte
	StartTime   time.Time
	EndTime     time.Time
}

// Store is the persistence contract the chain engine relies on (§6):
// insert a freshly-sent exchange, and retrieve the latest one for a recipe.
type Store interface {
	InsertExchange(ex Exchange) error
	GetLatest(recipeID string) (Exchange, bool, error)
}

// Memory is an in-memory Store keyed by recipe ID, keeping only the latest
// exchange per recipe. Reads observe this process's prior writes
// (read-your-writes), as required by §5.
type Memory struct {
	mu     sync.RWMutex
	latest map[string]Exchange
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{latest: make(map[string]Exchange)}
}

// InsertExchange records ex as the latest exchange for its recipe.
func (m *Memory) InsertExchange(ex Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	m.latest[ex.RecipeID] = ex
	return nil
}

// GetLatest returns the most recently inserted exchange for recipeID, if any.
func (m *Memory) GetLatest(recipeID string) (Exchange, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ex, ok := m.latest[recipeID]
	return ex, ok, nil
}
