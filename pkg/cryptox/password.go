package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, following the OWASP low-memory recommendation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	// pepper is a process-wide secret mixed into every password before
	// hashing. Optional; set once at startup from config.
	pepper string

	// ErrMismatch reports that a password does not match its stored hash.
	ErrMismatch = errors.New("cryptox: password does not match")
)

// SetPepper installs the process-wide pepper. Call before hashing or
// verifying any password.
func SetPepper(p string) { pepper = p }

// HashPassword generates a PHC-format Argon2id hash string including salt and
// parameters. The plaintext never leaves this function.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password+pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash using a constant-time comparison. Returns ErrMismatch on failure so
// callers can distinguish a bad password from a malformed hash.
func VerifyPassword(password, encodedHash string) error {
	parts := splitPHC(encodedHash)
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash format")
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return errors.New("cryptox: unsupported hash format")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: bad hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: bad salt encoding: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: bad hash encoding: %w", err)
	}

	computed := argon2.IDKey([]byte(password+pepper), salt, iters, mem, par, uint32(len(expected)))
	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrMismatch
}

// DummyHash returns a syntactically valid hash of a random throwaway
// password. Verifying against it always fails but burns the same CPU as a
// real verification, so username-not-found is timing-indistinguishable from
// a wrong password.
func DummyHash() string {
	buf := make([]byte, 18)
	_, _ = rand.Read(buf)
	h, err := HashPassword(base64.RawURLEncoding.EncodeToString(buf))
	if err != nil {
		// rand.Read never fails on supported platforms
		panic(err)
	}
	return h
}

func splitPHC(s string) []string {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(s) {
		if s[i] == '$' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
