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

// Issuer is the iss claim on every token
const Issuer = "irlcord"

// devSecret is used when no secret is configured
const devSecret = "irlcord-dev-secret-change-in-production"

// Claims represents the JWT claims. The subject names the adapter or tool
// calling the API.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens signs and validates HS256 bearer tokens
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a token signer. An empty secret falls back to a
// development secret.
func NewTokens(secret string) *Tokens {
	if secret == "" {
		secret = devSecret
	}
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// GenerateToken creates a new JWT for subject valid for ttl
func (t *Tokens) GenerateToken(subject string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken validates a JWT and returns its claims
func (t *Tokens) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(t.now))

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
