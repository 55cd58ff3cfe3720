package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the JWT claims
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and validates JWT tokens. The secret and token
// lifetime come from the application configuration at startup, so
// nothing in this package reads the environment directly.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a token service with the given signing secret
// and token validity duration.
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Lifetime returns the token validity duration.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// GenerateToken creates a new JWT token for a user
func (s *TokenService) GenerateToken(userID uint, email string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "linksaver",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
