// Package password provides the password hashing capability used when users
// are registered or loaded. Callers depend on Hasher; BcryptHasher is the
// production implementation.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Compare when the password does not match the hash.
var ErrMismatch = errors.New("password does not match")

// Hasher hashes passwords and verifies them against stored hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	// Compare returns nil on a match and an error wrapping ErrMismatch otherwise.
	Compare(hash, plain string) error
}

// BcryptHasher implements Hasher with golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	// Malformed or foreign hashes never authenticate.
	return fmt.Errorf("%w: %v", ErrMismatch, err)
}

var _ Hasher = (*BcryptHasher)(nil)
