package repository

import (
	"sync"

	"github.com/google/uuid"

	"bank-statement/internal/domain"
)

// DB holds every customer record for the lifetime of the process.
type DB struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
	byCPF     map[string]uuid.UUID
}

func NewDB() *DB {
	return &DB{
		customers: make(map[uuid.UUID]*domain.Customer),
		byCPF:     make(map[string]uuid.UUID),
	}
}

// executor represents both the shared DB and a running transaction
type executor interface {
	read(fn func(db *DB) error) error
	write(fn func(db *DB) error) error
	// journal registers the inverse of a write already applied.
	journal(undo func())
}

// Ensure both executors implement the interface
var (
	_ executor = (*DB)(nil)
	_ executor = (*txExecutor)(nil)
)

func (db *DB) read(fn func(db *DB) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db)
}

func (db *DB) write(fn func(db *DB) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db)
}

func (db *DB) journal(func()) {}

// txExecutor runs against a DB whose write lock is held by Store.WithTransaction.
type txExecutor struct {
	db   *DB
	undo []func()
}

func (t *txExecutor) read(fn func(db *DB) error) error {
	return fn(t.db)
}

func (t *txExecutor) write(fn func(db *DB) error) error {
	return fn(t.db)
}

func (t *txExecutor) journal(undo func()) {
	t.undo = append(t.undo, undo)
}

func (t *txExecutor) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}
