package auth_test

import (
	"testing"
	"time"

	"taskboard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseTokenPair(t *testing.T) {
	// Arrange
	userID := "test-user-id"

	// Act
	access, refresh, err := auth.GenerateTokenPair(userID, testSecret, 30*time.Minute, 24*time.Hour)

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	parsedUserID, err := auth.ParseToken(access, testSecret, auth.TokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)

	parsedUserID, err = auth.ParseToken(refresh, testSecret, auth.TokenTypeRefresh)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken("invalid-token", testSecret, auth.TokenTypeAccess)

	assert.Error(t, err)
	assert.Equal(t, auth.ErrInvalidToken, err)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// Token expired an hour ago
	expiredToken, err := auth.GenerateToken("test-user-id", testSecret, auth.TokenTypeAccess, -1*time.Hour)
	assert.NoError(t, err)

	_, err = auth.ParseToken(expiredToken, testSecret, auth.TokenTypeAccess)

	assert.Error(t, err)
	assert.Equal(t, auth.ErrInvalidToken, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("test-user-id", testSecret, auth.TokenTypeAccess, time.Hour)
	assert.NoError(t, err)

	_, err = auth.ParseToken(token, "another-secret", auth.TokenTypeAccess)

	assert.Error(t, err)
	assert.Equal(t, auth.ErrInvalidToken, err)
}

func TestParseToken_MissingClaims(t *testing.T) {
	// Token without a user_id claim
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutUserID, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	_, err = auth.ParseToken(tokenWithoutUserID, testSecret, auth.TokenTypeAccess)

	assert.Error(t, err)
	assert.Equal(t, auth.ErrInvalidClaims, err)
}

func TestParseToken_RefreshRejectedAsAccess(t *testing.T) {
	// A refresh token must not pass where an access token is expected
	refresh, err := auth.GenerateToken("test-user-id", testSecret, auth.TokenTypeRefresh, 24*time.Hour)
	assert.NoError(t, err)

	_, err = auth.ParseToken(refresh, testSecret, auth.TokenTypeAccess)

	assert.Error(t, err)
	assert.Equal(t, auth.ErrWrongTokenType, err)
}
