package service

import "errors"

var (
	// ErrDuplicateUsername surfaces as a conflict; registration is the one
	// place where username existence is allowed to leak.
	ErrDuplicateUsername = errors.New("duplicate_username")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password. The two must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh covers every way a refresh token can be bad. The
	// specific reason is logged, never returned.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrExpenseNotFound covers both a genuinely missing id and an id
	// owned by another tenant, so cross-tenant existence cannot leak.
	ErrExpenseNotFound = errors.New("expense_not_found")
)
