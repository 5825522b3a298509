package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// PrepareSecret turns a configured admin password into a bcrypt hash. Values that are
// already bcrypt hashes are returned unchanged so deployments can avoid plain text.
func (h BcryptHasher) PrepareSecret(configured string) (string, error) {
	if isBcryptHash(configured) {
		if _, err := bcrypt.Cost([]byte(configured)); err != nil {
			return "", err
		}
		return configured, nil
	}
	return h.Hash(configured)
}

func isBcryptHash(v string) bool {
	return len(v) == 60 && (strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$"))
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}
