package sqlite

import (
	"context"
	"testing"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser(t *testing.T, s *Store, username string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
	require.False(t, byID.CreatedAt.IsZero())

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)
}

func TestUsersDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	newTestUser(t, s, "alice")

	err := s.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		PasswordHash: "x",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpensesCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	e := domain.Expense{
		ID:          idx.New().String(),
		UserID:      u.ID,
		Description: "Coffee",
		Amount:      5.0,
	}
	require.NoError(t, s.Expenses().CreateExpense(ctx, e))

	got, err := s.Expenses().GetExpense(ctx, e.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Coffee", got.Description)
	require.Equal(t, 5.0, got.Amount)

	desc := "Tea"
	amount := 6.0
	updated, err := s.Expenses().UpdateExpense(ctx, e.ID, u.ID, domain.ExpenseUpdate{
		Description: &desc,
		Amount:      &amount,
	})
	require.NoError(t, err)
	require.Equal(t, "Tea", updated.Description)
	require.Equal(t, 6.0, updated.Amount)

	list, err := s.Expenses().ListExpensesByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Tea", list[0].Description)

	require.NoError(t, s.Expenses().DeleteExpense(ctx, e.ID, u.ID))
	_, err = s.Expenses().GetExpense(ctx, e.ID, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpensesPartialUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")
	e := domain.Expense{ID: idx.New().String(), UserID: u.ID, Description: "Coffee", Amount: 5.0}
	require.NoError(t, s.Expenses().CreateExpense(ctx, e))

	amount := 7.5
	updated, err := s.Expenses().UpdateExpense(ctx, e.ID, u.ID, domain.ExpenseUpdate{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, "Coffee", updated.Description)
	require.Equal(t, 7.5, updated.Amount)
}

func TestExpensesTenantScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	e := domain.Expense{ID: idx.New().String(), UserID: alice.ID, Description: "Coffee", Amount: 5.0}
	require.NoError(t, s.Expenses().CreateExpense(ctx, e))

	// Bob cannot see, update, or delete Alice's expense; the outcome is
	// identical to the record not existing.
	_, err := s.Expenses().GetExpense(ctx, e.ID, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	desc := "hijacked"
	_, err = s.Expenses().UpdateExpense(ctx, e.ID, bob.ID, domain.ExpenseUpdate{Description: &desc})
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Expenses().DeleteExpense(ctx, e.ID, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Expenses().ListExpensesByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	boom := domain.Expense{ID: idx.New().String(), UserID: u.ID, Description: "tx", Amount: 1}
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Expenses().CreateExpense(ctx, boom); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.Error(t, err)

	_, err = s.Expenses().GetExpense(ctx, boom.ID, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
