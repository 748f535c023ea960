package auth

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt cost used for admin API keys.
const DefaultCost = bcrypt.DefaultCost

// HashPassword hashes a plaintext secret with the given cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a secret against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
