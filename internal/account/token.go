// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the validity window of issued session tokens.
const DefaultTokenTTL = time.Hour

// Claims are the identity assertions embedded in a session token.
// The payload carries id, email, and username — never the password
// or its hash.
type Claims struct {
	jwt.RegisteredClaims
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenIssuer signs time-limited session tokens over a user's identity.
//
// The signing secret is injected at construction rather than read from
// process-global state; its absence is a startup failure, not a per-request
// error.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The secret must be non-empty; a ttl
// of zero selects DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_SECRET_MISSING").Errorf("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token asserting the user's id, email, and username,
// expiring ttl after issuance.
func (i *TokenIssuer) Issue(user *User) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		ID:       user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Parse verifies a token's signature and expiry and returns its claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("invalid token")
	}
	return claims, nil
}
