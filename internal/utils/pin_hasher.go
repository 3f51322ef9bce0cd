package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptPinHasher hashes card PINs with bcrypt.
type BcryptPinHasher struct {
	Cost int
}

// NewBcryptPinHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptPinHasher(cost int) *BcryptPinHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPinHasher{Cost: cost}
}

// Hash hashes a plaintext PIN using bcrypt.
func (h *BcryptPinHasher) Hash(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), h.Cost)
	return string(hash), err
}

// Verify compares a plaintext PIN with a bcrypt hash.
func (h *BcryptPinHasher) Verify(pin, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pin)) == nil
}
