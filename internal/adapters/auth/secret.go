package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"weddingsite/internal/domain"
)

type secretChecker struct{}

// NewSecretChecker returns a SecretChecker for the shared gate passwords.
// Secrets stored as bcrypt hashes ($2...) are compared with bcrypt;
// plaintext secrets are compared in constant time.
func NewSecretChecker() domain.SecretChecker {
	return &secretChecker{}
}

func (c *secretChecker) Check(secret, password string) bool {
	if password == "" {
		return false
	}
	if strings.HasPrefix(secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}
