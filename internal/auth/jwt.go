// Package auth resolves bearer tokens to user ids.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

const issuer = "glycocare"

// JWTProvider validates HS256 tokens whose subject is the user's UUID.
// It implements domain.IdentityProvider.
type JWTProvider struct {
	secret []byte
	now    func() time.Time
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), now: time.Now}
}

func (p *JWTProvider) ResolveCaller(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.NewAuthenticationError(errors.New("missing token"))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperrors.NewAuthenticationError(err)
	}
	if !parsed.Valid {
		return "", apperrors.NewAuthenticationError(errors.New("invalid token"))
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", apperrors.NewAuthenticationError(fmt.Errorf("invalid subject: %w", err))
	}
	return id.String(), nil
}

// IssueToken signs a token for userID that expires after ttl.
func (p *JWTProvider) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
