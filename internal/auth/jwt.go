package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "controlpanel"

// Role decides which routes a token may call.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Claims is the payload of every control panel token.
//
// ShowToken addresses the show aggregate. Handlers read it once, from the
// request, and pass it down explicitly; nothing downstream looks up a
// "current show" on its own.
type Claims struct {
	ShowToken     string `json:"show_token"`
	Email         string `json:"email"`
	ShowSubdomain string `json:"show_subdomain,omitempty"`
	Role          Role   `json:"show_role"`
	jwt.RegisteredClaims
}

// Identity is who a token is issued for.
type Identity struct {
	ShowToken     string
	Email         string
	ShowSubdomain string
	Role          Role
}

// GenerateToken signs an HS256 token for id that expires after ttl.
func GenerateToken(id Identity, secret string, ttl time.Duration) (string, error) {
	if id.ShowToken == "" {
		return "", errors.New("show token is required")
	}
	if id.Role == "" {
		id.Role = RoleUser
	}

	now := time.Now()
	claims := Claims{
		ShowToken:     id.ShowToken,
		Email:         id.Email,
		ShowSubdomain: id.ShowSubdomain,
		Role:          id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ShowToken,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies signature, expiry and issuer and returns the claims.
// Only HMAC-signed tokens are accepted.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ShowToken == "" {
		return nil, fmt.Errorf("token has no show token")
	}

	return claims, nil
}
