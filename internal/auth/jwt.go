// Package auth implements the external auth collaborator contract: bearer
// JWTs issued out-of-band, verified at connection establishment. Revoked
// tokens can be blacklisted in redis; without a redis client that check is
// skipped.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"

	"github.com/dkeye/Huddle/internal/domain"
)

const blacklistPrefix = "blacklist:"

type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
	redis         *redis.Client
}

func NewJWTManager(secret string, duration time.Duration, rdb *redis.Client) *JWTManager {
	return &JWTManager{secretKey: secret, tokenDuration: duration, redis: rdb}
}

// Issue creates a JWT for userID. The gateway never calls this; it exists for
// operators and tests standing in for the real credential issuer.
func (m *JWTManager) Issue(userID domain.UserID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   string(userID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Verify parses and checks the credential and returns the subject user id.
func (m *JWTManager) Verify(ctx context.Context, credential string) (domain.UserID, error) {
	if m.redis != nil {
		exists, err := m.redis.Exists(ctx, blacklistPrefix+credential).Result()
		if err == nil && exists > 0 {
			return "", errors.New("token is blacklisted")
		}
	}

	token, err := jwt.ParseWithClaims(credential, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return "", fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return domain.UserID(claims.Subject), nil
}

// Revoke blacklists the credential until it would have expired anyway.
func (m *JWTManager) Revoke(ctx context.Context, credential string) error {
	if m.redis == nil {
		return errors.New("no redis client configured")
	}
	claims, err := jwt.ParseWithClaims(credential, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.secretKey), nil
	})
	ttl := m.tokenDuration
	if err == nil {
		if c, ok := claims.Claims.(*jwt.RegisteredClaims); ok && c.ExpiresAt != nil {
			ttl = time.Until(c.ExpiresAt.Time)
		}
	}
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, blacklistPrefix+credential, 1, ttl).Err()
}
