package token

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalid = errors.New("token: invalid")
	ErrExpired = errors.New("token: expired")
)

var (
	mu     sync.RWMutex
	secret string
)

// SetSecret configures the signing key used by Issue and Parse. When unset
// the JWT_SECRET environment variable is used.
func SetSecret(s string) {
	mu.Lock()
	defer mu.Unlock()
	secret = s
}

func signingKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	if secret != "" {
		return []byte(secret)
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

type Claims struct {
	UserID    string
	Type      string
	ExpiresAt time.Time
}

func Issue(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(signingKey())
}

// Parse verifies the signature and expiry of raw and, when expectedType is
// not empty, that it was issued for that purpose.
func Parse(raw, expectedType string) (Claims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signingKey(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	if !t.Valid {
		return Claims{}, ErrInvalid
	}

	mc, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalid
	}

	userID, _ := mc["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrInvalid
	}

	tokenType, _ := mc["token_type"].(string)
	if expectedType != "" && tokenType != expectedType {
		return Claims{}, ErrInvalid
	}

	claims := Claims{UserID: userID, Type: tokenType}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
