package service

import (
	"context"
	"errors"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/jwtx"
	"github.com/quietloops/tally/pkg/slogx"
)

// TokenService composes the credential store with the token issuer. Tokens
// are fully stateless: nothing is persisted at login or refresh, and a
// rotated-out refresh token stays valid until its own expiry.
type TokenService struct {
	Users  *UserService
	Issuer *jwtx.Issuer
}

// Login verifies the credentials and mints a fresh access/refresh pair.
func (s *TokenService) Login(ctx context.Context, username, password string) (domain.User, domain.TokenPair, error) {
	u, err := s.Users.Verify(ctx, username, password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh validates a refresh token and rotates it into a brand-new pair
// bound to the same subject. Every rejection reason collapses to
// ErrInvalidRefresh; the distinct cause is only logged.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Issuer.Decode(refreshToken)
	if err != nil {
		slogx.FromContext(ctx).Info("refresh token rejected", "reason", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// The subject must still exist; a deleted account must not be able to
	// mint new tokens from an old refresh token.
	if _, err := s.Users.GetUserByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Info("refresh token rejected", "reason", "unknown subject")
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	return s.issuePair(claims.Subject)
}

func (s *TokenService) issuePair(subject string) (domain.TokenPair, error) {
	access, err := s.Issuer.IssueAccess(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Issuer.IssueRefresh(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    jwtx.AccessTokenTTL,
		RefreshTTL:   jwtx.RefreshTokenTTL,
	}, nil
}
