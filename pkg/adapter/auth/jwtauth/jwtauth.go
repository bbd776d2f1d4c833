// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jwtauth authenticates the libweb callers using HS256 signed
// JSON web tokens. The token subject is a user ID. Its role is looked
// up from the users directory by the identityuc package, so tokens do
// not carry any role claim and a role change takes effect immediately.
package jwtauth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
)

// ErrEmptySecret is returned by New when no signing secret is given.
var ErrEmptySecret = errors.New("empty jwt secret")

// Authenticator issues and verifies the bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string

	now func() time.Time
}

// New creates an Authenticator which signs tokens by secret and puts
// issuer in their iss claim.
func New(secret, issuer string) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue creates a token for userID which expires after ttl.
func (a *Authenticator) Issue(userID uuid.UUID, ttl time.Duration) (
	string, error,
) {
	now := a.now()
	c := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(a.secret)
}

// Parse verifies the tok signature, issuer, and expiration time and
// returns its subject. Failures are reported as cerr.Authentication.
func (a *Authenticator) Parse(tok string) (uuid.UUID, error) {
	c := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tok, c,
		func(*jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return uuid.Nil, cerr.Authentication(err)
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, cerr.Authentication(
			fmt.Errorf("invalid subject: %w", err),
		)
	}
	return id, nil
}

// Middleware returns a gin handler which authenticates the bearer
// token of requests. Requests without an Authorization header pass
// through anonymously and are rejected by the use cases if they need
// a caller. Malformed or invalid tokens are rejected with 401.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "expected a bearer token",
			})
			return
		}
		id, err := a.Parse(strings.TrimSpace(tok))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "invalid token",
			})
			return
		}
		c.Request = c.Request.WithContext(
			auth.WithSubject(c.Request.Context(), id),
		)
		c.Next()
	}
}
