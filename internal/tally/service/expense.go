package service

import (
	"context"
	"errors"
	"time"

	"github.com/quietloops/tally/internal/tally/cache"
	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/idx"
)

// storeOpTimeout bounds every record-store operation. Unlike a cache
// timeout, hitting this one is a hard failure for the request.
const storeOpTimeout = 5 * time.Second

// ExpenseSnapshot is the shaped, cacheable representation of one expense.
// This is also the wire shape of list and read responses.
type ExpenseSnapshot struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func shapeExpense(e domain.Expense) ExpenseSnapshot {
	return ExpenseSnapshot{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
	}
}

// ExpenseService owns tenant-scoped expense records. Reads of the listing go
// through the cache-aside orchestrator; every mutation invalidates the
// tenant's cache prefix after the store commit.
type ExpenseService struct {
	Store store.Store
	Cache *cache.Orchestrator
}

// Create inserts a new expense for the tenant and invalidates their cached
// snapshot.
func (s *ExpenseService) Create(ctx context.Context, userID, description string, amount float64) (domain.Expense, error) {
	e := domain.Expense{
		ID:          idx.New().String(),
		UserID:      userID,
		Description: description,
		Amount:      amount,
	}

	err := s.Cache.InvalidateOnWrite(ctx, userID, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
		defer cancel()
		return s.Store.Expenses().CreateExpense(opCtx, e)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	// CreatedAt is assigned by the store; reload so the response carries it.
	return s.get(ctx, e.ID, userID)
}

// List returns the tenant's expenses, served from the cache when a fresh
// snapshot exists and recomputed from the store otherwise.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]ExpenseSnapshot, error) {
	return cache.ReadThrough(ctx, s.Cache, cache.ExpensesKey(userID), func(ctx context.Context) ([]ExpenseSnapshot, error) {
		opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
		defer cancel()

		records, err := s.Store.Expenses().ListExpensesByUser(opCtx, userID)
		if err != nil {
			return nil, err
		}

		shaped := make([]ExpenseSnapshot, 0, len(records))
		for _, e := range records {
			shaped = append(shaped, shapeExpense(e))
		}
		return shaped, nil
	})
}

// Get returns one expense owned by the tenant. A foreign or missing id is
// the same ErrExpenseNotFound.
func (s *ExpenseService) Get(ctx context.Context, id, userID string) (domain.Expense, error) {
	return s.get(ctx, id, userID)
}

func (s *ExpenseService) get(ctx context.Context, id, userID string) (domain.Expense, error) {
	opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	e, err := s.Store.Expenses().GetExpense(opCtx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Expense{}, ErrExpenseNotFound
		}
		return domain.Expense{}, err
	}
	return e, nil
}

// Update applies a partial update and invalidates the tenant's cached
// snapshot. If the store rejects the update, the cache is left untouched.
func (s *ExpenseService) Update(ctx context.Context, id, userID string, upd domain.ExpenseUpdate) (domain.Expense, error) {
	var updated domain.Expense

	err := s.Cache.InvalidateOnWrite(ctx, userID, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
		defer cancel()

		var err error
		updated, err = s.Store.Expenses().UpdateExpense(opCtx, id, userID, upd)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Expense{}, ErrExpenseNotFound
		}
		return domain.Expense{}, err
	}
	return updated, nil
}

// Delete removes the tenant's expense and invalidates their cached snapshot.
func (s *ExpenseService) Delete(ctx context.Context, id, userID string) error {
	err := s.Cache.InvalidateOnWrite(ctx, userID, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
		defer cancel()
		return s.Store.Expenses().DeleteExpense(opCtx, id, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}
