package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "token_type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidClaims  = errors.New("invalid claims")
	ErrWrongTokenType = errors.New("unexpected token type")
)

func GenerateToken(userID, secret, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"exp":        time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateTokenPair issues an access/refresh token pair for a user.
func GenerateTokenPair(userID, secret string, accessTTL, refreshTTL time.Duration) (string, string, error) {
	access, err := GenerateToken(userID, secret, TokenTypeAccess, accessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err := GenerateToken(userID, secret, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// ParseToken validates a token of the given type and returns the user ID it
// was issued for.
func ParseToken(tokenStr, secret, tokenType string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidClaims
	}

	if typ, _ := claims["token_type"].(string); typ != tokenType {
		return "", ErrWrongTokenType
	}

	return userID, nil
}
