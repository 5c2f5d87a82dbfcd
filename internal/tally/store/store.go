package store

import (
	"context"
	"errors"

	"github.com/quietloops/tally/internal/tally/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the authoritative record
// store. Concrete drivers (sqlite today) implement it. Sub-repositories keep
// concerns tidy and let transactions reuse the same query code.
type Store interface {
	Users() Users
	Expenses() Expenses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying connection.
	Close() error

	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID resolves the authenticated subject on each request.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

// Expenses is the tenant-scoped record repository. Every lookup takes the
// owning user id; an id owned by another tenant is indistinguishable from a
// missing id (both return ErrNotFound).
type Expenses interface {
	CreateExpense(ctx context.Context, e domain.Expense) error

	// ListExpensesByUser returns the tenant's expenses, oldest first.
	ListExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error)

	GetExpense(ctx context.Context, id, userID string) (domain.Expense, error)

	// UpdateExpense applies the non-nil fields of upd and returns the
	// resulting row.
	UpdateExpense(ctx context.Context, id, userID string, upd domain.ExpenseUpdate) (domain.Expense, error)

	DeleteExpense(ctx context.Context, id, userID string) error
}
