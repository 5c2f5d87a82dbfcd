package sqlite

import (
	"context"
	"time"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/store"
)

type expensesRepo struct {
	q querier
}

const expenseColumns = `id, user_id, description, amount, created_at, updated_at`

func (r *expensesRepo) CreateExpense(ctx context.Context, e domain.Expense) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, description, amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Description, e.Amount, now, now)
	return mapConstraint(err)
}

func (r *expensesRepo) ListExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expensesRepo) GetExpense(ctx context.Context, id, userID string) (domain.Expense, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)

	var e domain.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Expense{}, mapNotFound(err)
	}
	return e, nil
}

func (r *expensesRepo) UpdateExpense(ctx context.Context, id, userID string, upd domain.ExpenseUpdate) (domain.Expense, error) {
	current, err := r.GetExpense(ctx, id, userID)
	if err != nil {
		return domain.Expense{}, err
	}

	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Amount != nil {
		current.Amount = *upd.Amount
	}
	current.UpdatedAt = time.Now().UTC()

	res, err := r.q.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		current.Description, current.Amount, current.UpdatedAt, id, userID)
	if err != nil {
		return domain.Expense{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Expense{}, store.ErrNotFound
	}
	return current, nil
}

func (r *expensesRepo) DeleteExpense(ctx context.Context, id, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
