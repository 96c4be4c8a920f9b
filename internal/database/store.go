package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repositories groups the per-table repositories sharing one connection or transaction.
type Repositories struct {
	Words      *WordRepository
	Users      *UserRepository
	Progress   *UserProgressRepository
	Sessions   *TrainingSessionRepository
	Statistics *StatisticsRepository
}

func newRepositories(db sqlx.ExtContext) Repositories {
	return Repositories{
		Words:      &WordRepository{db: db},
		Users:      &UserRepository{db: db},
		Progress:   &UserProgressRepository{db: db},
		Sessions:   &TrainingSessionRepository{db: db},
		Statistics: &StatisticsRepository{db: db},
	}
}

// Store owns the database connection. Its embedded repositories run outside a
// transaction; use WithTx for multi-statement mutations.
type Store struct {
	Repositories
	db *sqlx.DB
}

// NewStore wraps an open connection. The schema must already exist.
func NewStore(db *sqlx.DB) *Store {
	return &Store{Repositories: newRepositories(db), db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics and committed otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(r Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(newRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound converts sql.ErrNoRows into ErrNotFound and wraps other errors.
func notFound(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func requireAffected(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", action, ErrNotFound)
	}
	return nil
}
