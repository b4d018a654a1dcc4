package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is verified when no stored hash exists so that a missing
// account costs the same as a wrong password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=2$c29tZXNhbHRzb21lc2FsdA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type PasswordHasher struct {
	params *argon2id.Params
}

// NewPasswordHasher uses argon2id.DefaultParams when params is nil.
func NewPasswordHasher(params *argon2id.Params) *PasswordHasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &PasswordHasher{params: params}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, h.params)
}

// Verify reports whether password matches hash. Hashes in the bcrypt
// format are checked with bcrypt, everything else with argon2id.
// Malformed hashes never match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if isBcryptHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false
	}
	return match
}

// VerifyDummy burns one verification against a fixed hash.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = h.Verify(password, dummyPasswordHash)
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
