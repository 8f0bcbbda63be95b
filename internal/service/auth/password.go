package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a plaintext password against its stored hash.
// Hashing itself happens in the user store at persistence time; login
// only ever needs the comparison side.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword and a
	// non-nil error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier. The bcrypt cost is
// encoded in the hash itself, so verification needs no configuration.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare delegates to bcrypt.CompareHashAndPassword.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
