package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, expiresAt, err := tm.GenerateToken("releng-bot", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "releng-bot", claims.Subject)
	assert.True(t, claims.ServiceAccount)
}

func TestTokenManager_RejectsForeignSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("one", 5)
	token, _, err := issuer.GenerateToken("alice", false)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(token)
	assert.Error(t, err)

	expired := NewTokenManager("one", 5)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateToken("alice", false)
	require.NoError(t, err)
	_, err = issuer.ParseToken(old)
	assert.Error(t, err)
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	_, _, err := NewTokenManager("s", 1).GenerateToken("", false)
	assert.Error(t, err)
}

func TestTokenManager_RejectsOtherIssuerAndAlgorithm(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseToken(unsigned)
	assert.Error(t, err)
}

func TestCredentials_Verify(t *testing.T) {
	hash, err := HashSecret("hunter2", 4)
	require.NoError(t, err)
	creds := NewCredentials(map[string]string{"releng": hash})

	assert.Equal(t, 1, creds.Len())
	assert.True(t, creds.Verify("releng", "hunter2"))
	assert.False(t, creds.Verify("releng", "hunter3"))
	assert.False(t, creds.Verify("nobody", "hunter2"))
}
