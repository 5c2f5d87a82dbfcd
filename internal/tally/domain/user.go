package domain

import "time"

// User is a registered tenant. The password is stored only as an Argon2id
// hash; plaintext never crosses this type.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
