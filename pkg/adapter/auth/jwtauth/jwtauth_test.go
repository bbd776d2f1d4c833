// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jwtauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := New("", "libweb")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueAndParse(t *testing.T) {
	a, err := New("s3cret", "libweb")
	require.NoError(t, err)
	id := uuid.New()
	tok, err := a.Issue(id, time.Hour)
	require.NoError(t, err)

	got, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseRejections(t *testing.T) {
	a, err := New("s3cret", "libweb")
	require.NoError(t, err)
	other, err := New("other", "libweb")
	require.NoError(t, err)
	foreign, err := New("s3cret", "someone-else")
	require.NoError(t, err)
	id := uuid.New()

	expired, err := a.Issue(id, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.Issue(id, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := foreign.Issue(id, time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{Issuer: "libweb", Subject: id.String()},
	).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Issuer:    "libweb",
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "a.b.c",
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"no exp":       noExp,
		"bad subject":  badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Parse(tok)
			require.Error(t, err)
			assert.True(t, cerr.IsKind(err, cerr.KindAuthentication))
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New("s3cret", "libweb")
	require.NoError(t, err)
	e := gin.New()
	e.Use(a.Middleware())
	e.GET("/whoami", func(c *gin.Context) {
		id, ok := auth.Subject(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.String())
	})
	id := uuid.New()
	tok, err := a.Issue(id, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid", "Bearer " + tok, http.StatusOK, id.String()},
		{"lower case scheme", "bearer " + tok, http.StatusOK, id.String()},
		{"basic scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer x.y.z", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "detail")
			}
		})
	}
}
