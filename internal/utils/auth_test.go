package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)
	assert.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash("wrongpassword", hash))
}

func TestJWT(t *testing.T) {
	secret := "test-secret-key-12345"

	token, err := GenerateToken("admin", "admin", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = ValidateToken(token, "wrong-key")
	assert.Error(t, err, "validation should fail with wrong key")
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateToken("admin", "admin", "k", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "k")
	assert.Error(t, err)
}
