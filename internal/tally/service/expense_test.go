package service

import (
	"context"
	"testing"

	"github.com/quietloops/tally/internal/tally/cache"
	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/stretchr/testify/require"
)

func registerTenant(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	u, err := env.users.Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return u.ID
}

func TestExpenseCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")

	created, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())

	list, err := env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Coffee", list[0].Description)
	require.Equal(t, 5.0, list[0].Amount)

	// The read populated the tenant's snapshot.
	require.True(t, env.redis.Exists(cache.ExpensesKey(alice)))
}

func TestExpenseUpdateInvalidatesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")

	created, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)

	// Populate the cache, then mutate.
	_, err = env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.True(t, env.redis.Exists(cache.ExpensesKey(alice)))

	desc := "Tea"
	amount := 6.0
	updated, err := env.expenses.Update(ctx, created.ID, alice, domain.ExpenseUpdate{
		Description: &desc,
		Amount:      &amount,
	})
	require.NoError(t, err)
	require.Equal(t, "Tea", updated.Description)
	require.False(t, env.redis.Exists(cache.ExpensesKey(alice)))

	// The next read never re-serves the stale snapshot.
	list, err := env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Tea", list[0].Description)
	require.Equal(t, 6.0, list[0].Amount)
}

func TestExpenseRapidUpdatesConverge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")

	created, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)

	for _, amount := range []float64{6.0, 7.0} {
		a := amount
		_, err = env.expenses.Update(ctx, created.ID, alice, domain.ExpenseUpdate{Amount: &a})
		require.NoError(t, err)
	}

	// After any subsequent read the snapshot reflects the latest committed
	// mutation.
	list, err := env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 7.0, list[0].Amount)
}

func TestExpenseFailedMutationLeavesCacheIntact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")

	_, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)
	_, err = env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.True(t, env.redis.Exists(cache.ExpensesKey(alice)))

	// Updating a nonexistent id fails in the store; the committed snapshot
	// must survive.
	desc := "nope"
	_, err = env.expenses.Update(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ", alice, domain.ExpenseUpdate{Description: &desc})
	require.ErrorIs(t, err, ErrExpenseNotFound)
	require.True(t, env.redis.Exists(cache.ExpensesKey(alice)))
}

func TestExpenseTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")
	bob := registerTenant(t, env, "bob")

	aliceExp, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)
	_, err = env.expenses.Create(ctx, bob, "Books", 20.0)
	require.NoError(t, err)

	// Cache-miss path.
	aliceList, err := env.expenses.List(ctx, alice)
	require.NoError(t, err)
	bobList, err := env.expenses.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	require.Len(t, bobList, 1)
	require.Equal(t, "Coffee", aliceList[0].Description)
	require.Equal(t, "Books", bobList[0].Description)

	// Cache-hit path returns the same partition.
	aliceList, err = env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "Coffee", aliceList[0].Description)

	// A foreign id behaves exactly like a missing one.
	_, err = env.expenses.Get(ctx, aliceExp.ID, bob)
	require.ErrorIs(t, err, ErrExpenseNotFound)
	require.ErrorIs(t, env.expenses.Delete(ctx, aliceExp.ID, bob), ErrExpenseNotFound)
}

func TestExpenseDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := registerTenant(t, env, "alice")

	created, err := env.expenses.Create(ctx, alice, "Coffee", 5.0)
	require.NoError(t, err)

	require.NoError(t, env.expenses.Delete(ctx, created.ID, alice))

	list, err := env.expenses.List(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, list)

	require.ErrorIs(t, env.expenses.Delete(ctx, created.ID, alice), ErrExpenseNotFound)
}
