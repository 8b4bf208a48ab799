package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted bcrypt digest of password. Two calls with
// the same password produce different digests.
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches digest. A malformed digest
// is treated as a mismatch, never an error.
func CheckPassword(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
