package secrets

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "courthouse/pkg/domain-errors"
)

// Hasher hashes stored secrets with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's accepted range. Zero means bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return Hasher{cost: cost}
}

// Hash creates a bcrypt hash of the provided secret.
func (h Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// Verify checks a plaintext secret against a bcrypt hash. An empty hash never
// matches.
func Verify(secret, hash string) error {
	if hash == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
	return nil
}
