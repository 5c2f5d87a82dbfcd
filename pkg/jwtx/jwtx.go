// Package jwtx issues and validates the signed, time-bounded tokens that
// carry authentication between requests. Tokens are stateless: validity is
// determined purely by signature and expiry at decode time, nothing is kept
// server-side.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Expiry is always derived from issue time plus one of
// these constants; tokens are reissued, never extended in place.
const (
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// Leeway tolerated when validating exp, for clock skew between hosts.
	Leeway = time.Second
)

var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrBadSignature   = errors.New("jwtx: invalid signature")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrMissingSubject = errors.New("jwtx: missing subject claim")
)

// Claims is the wire shape of both token kinds: {sub, iat, exp}. Access and
// refresh tokens differ only in TTL.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and validates tokens with a single process-wide symmetric
// secret (HS256). It is pure computation and safe for concurrent use.
type Issuer struct {
	Secret []byte

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// IssueAccess mints a short-lived access token for the subject.
func (i *Issuer) IssueAccess(subject string) (string, error) {
	return i.issue(subject, AccessTokenTTL)
}

// IssueRefresh mints a long-lived refresh token for the subject.
func (i *Issuer) IssueRefresh(subject string) (string, error) {
	return i.issue(subject, RefreshTokenTTL)
}

func (i *Issuer) issue(subject string, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Decode validates a token and returns its claims. Rejection order: structure
// and signature first, then expiry, then subject presence. The distinct error
// values exist for internal diagnostics; callers surface them uniformly.
func (i *Issuer) Decode(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrBadSignature
			}
			return i.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(Leeway),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrMissingSubject
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
