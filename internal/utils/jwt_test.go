package utils

import (
	"testing"

	"moonex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &models.UserClaims{UserID: 42, Email: "alice@example.com", TokenVersion: 3}

	access, refresh, err := GenerateTokens(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	_, parsed, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, "alice@example.com", parsed.Email)
	assert.Equal(t, 3, parsed.TokenVersion)
	assert.Equal(t, "moonex-api", parsed.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	access, _, err := GenerateTokens(&models.UserClaims{UserID: 1})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, _, err = ParseToken(access)
	assert.Error(t, err)
}

func TestGenerateTokens_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, _, err := GenerateTokens(&models.UserClaims{UserID: 1})
	assert.Error(t, err)
}
