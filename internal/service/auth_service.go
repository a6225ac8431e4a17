package service

import (
	"errors"
	"fmt"
	"time"

	"roombridge/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAuthDisabled       = errors.New("no operator account configured")
)

// AuthService authenticates the single operator account defined in the
// config. There is no user store; the bridge serves one household.
type AuthService struct {
	op config.Operator
}

func NewAuthService(op config.Operator) *AuthService {
	return &AuthService{op: op}
}

// Enabled reports whether an operator account is configured. When it is
// not, the protected API surface stays locked.
func (s *AuthService) Enabled() bool {
	return s.op.Username != ""
}

// GenerateToken validates credentials against the configured operator and
// returns a signed JWT.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	if username != s.op.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.op.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	return token.SignedString([]byte(s.op.SigningKey))
}

// ParseToken verifies a JWT and returns the operator username it names.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	token, err := jwt.ParseWithClaims(accessToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.op.SigningKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject != s.op.Username {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
