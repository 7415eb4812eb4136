package service

import "golang.org/x/crypto/bcrypt"

// Hasher provides one-way password hashing and verification.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes with bcrypt. The salt is embedded in the output, so
// hashing the same input twice yields different hashes.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a BcryptHasher with the given work factor.
// Non-positive cost falls back to bcrypt.DefaultCost (10).
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the hash. Mismatch is not an
// error condition, it returns false.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
