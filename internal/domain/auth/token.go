// Package auth signs and verifies client scoped API tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token signs and verifies client scoped JWT tokens.
type Token struct {
	secretKey []byte
	ttl       time.Duration
}

// NewToken builds a token helper using the provided secret.
func NewToken(secretKey string) *Token {
	return &Token{
		secretKey: []byte(secretKey),
		ttl:       time.Hour,
	}
}

// WithTTL allows customising the expiration duration.
func (t *Token) WithTTL(ttl time.Duration) *Token {
	if ttl > 0 {
		t.ttl = ttl
	}
	return t
}

// Generate issues a JWT for the provided client identifier.
func (t *Token) Generate(clientID string) (string, error) {
	if t == nil {
		return "", errors.New("token helper is nil")
	}
	if len(t.secretKey) == 0 {
		return "", errors.New("token secret is empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"client_id": clientID,
		"exp":       now.Add(t.ttl).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the JWT and extracts the client identifier.
func (t *Token) Verify(tokenString string) (bool, string, error) {
	if t == nil {
		return false, "", errors.New("token helper is nil")
	}
	if len(t.secretKey) == 0 {
		return false, "", errors.New("token secret is empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		return false, "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return false, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false, "", errors.New("invalid claims")
	}
	clientID, ok := claims["client_id"].(string)
	if !ok {
		return false, "", errors.New("invalid client_id claim")
	}
	return true, clientID, nil
}
