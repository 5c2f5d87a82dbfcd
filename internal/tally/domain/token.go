package domain

import "time"

// TokenPair is a freshly issued access/refresh pair. Rotation always mints a
// complete new pair; tokens are never extended in place.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}
