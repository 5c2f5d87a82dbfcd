package service

import (
	"context"
	"errors"
	"sync"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/cryptox"
	"github.com/quietloops/tally/pkg/idx"
	"github.com/quietloops/tally/pkg/slogx"
)

// UserService is the credential store: it owns registration and password
// verification. It is the trust anchor for issuing tokens.
type UserService struct {
	Store store.Store

	dummyOnce sync.Once
	dummyHash string
}

// Register creates a new user with an Argon2id-hashed password. The
// plaintext is hashed immediately and never stored or logged.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateUsername
		}
		return domain.User{}, err
	}
	return u, nil
}

// Verify checks a username/password pair. Unknown username and wrong
// password both return ErrInvalidCredentials, and the unknown-username path
// still burns a full hash verification so the two are also
// timing-indistinguishable.
func (s *UserService) Verify(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.dummyOnce.Do(func() { s.dummyHash = cryptox.DummyHash() })
			_ = cryptox.VerifyPassword(password, s.dummyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unreadable", "user_id", u.ID, "err", err)
		}
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetUserByID resolves the authenticated subject on each request.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}
