package repository

import (
	"log/slog"

	"bank-statement/internal/domain"
	"bank-statement/internal/errors"
)

// Store provides a unified interface for all repository operations with transaction support
type Store struct {
	executor executor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

// Customer returns a CustomerRepository using the current executor
func (s *Store) Customer() domain.CustomerRepository {
	return newCustomerRepository(s.executor, s.logger)
}

// WithTransaction runs fn while holding the exclusive lock on the DB. Writes
// made through the Store passed to fn are undone if fn fails or panics.
func (s *Store) WithTransaction(fn func(*Store) error) error {
	// Transactions do not nest
	db, ok := s.executor.(*DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &txExecutor{db: db}
	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.rollback()
		return err
	}

	return nil
}
