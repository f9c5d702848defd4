package utils

import (
	"errors" // Error classification
	"fmt"    // Error wrapping

	"trade_journal/internal/domain" // Error taxonomy

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// PasswordHasher hashes and verifies plaintext passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher salts every hash with fresh randomness and compares in
// constant time.
type BcryptHasher struct {
	cost      int    // bcrypt work factor
	dummyHash []byte // Compared against when there is no stored hash
}

// NewBcryptHasher creates a hasher; cost outside bcrypt's range uses
// bcrypt.DefaultCost. It panics if the dummy hash cannot be generated.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Without the dummy hash, unknown-email logins would return early and be faster
	dummy, err := bcrypt.GenerateFromPassword([]byte("trade-journal-dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("utils.NewBcryptHasher: dummy hash: %v", err))
	}
	return &BcryptHasher{cost: cost, dummyHash: dummy}
}

// Hash returns an opaque salted hash of plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	const op = "utils.BcryptHasher.Hash"
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%s: %w", op, domain.Invalid("password must be at most 72 bytes"))
		}
		// bcrypt errors never include the input; keep it that way
		return "", fmt.Errorf("%s: hashing failed: %w", op, domain.ErrInternal)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. An empty hash is checked
// against a dummy so the call costs the same whether or not a user exists.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
