package domain

import "time"

// Expense is a tenant-scoped record. UserID is the owning tenant; every
// store query and cache key is partitioned by it.
type Expense struct {
	ID          string
	UserID      string
	Description string
	Amount      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpenseUpdate carries a partial update. Nil fields are left unchanged.
type ExpenseUpdate struct {
	Description *string
	Amount      *float64
}
