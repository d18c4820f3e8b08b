package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	placeholderOnce sync.Once
	placeholderHash []byte
)

// Credentials verifies service-account secrets against bcrypt hashes.
type Credentials struct {
	hashes map[string][]byte
}

// NewCredentials copies accounts, a map of account name to bcrypt hash.
func NewCredentials(accounts map[string]string) *Credentials {
	hashes := make(map[string][]byte, len(accounts))
	for name, hash := range accounts {
		hashes[name] = []byte(hash)
	}
	return &Credentials{hashes: hashes}
}

// Verify reports whether secret matches the account's hash. Unknown accounts
// are compared against a placeholder so both paths cost one bcrypt round.
func (c *Credentials) Verify(account, secret string) bool {
	hash, ok := c.hashes[account]
	if !ok {
		placeholderOnce.Do(func() {
			placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.DefaultCost)
		})
		_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(secret))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}

// Len returns the number of configured accounts.
func (c *Credentials) Len() int { return len(c.hashes) }

// HashSecret produces the value stored in AUTH_SERVICE_ACCOUNTS.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
