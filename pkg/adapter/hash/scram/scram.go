// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram implements the core scram.Hasher port for the
// SCRAM-SHA-1 and SCRAM-SHA-256 mechanisms using the xdg-go/scram
// module.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// MinIters is the least accepted iterations count.
const MinIters = 4096

// These errors are returned by Hash for unacceptable arguments.
var (
	ErrEmptyPassword = errors.New("password must be non-empty")
	ErrFewIters      = fmt.Errorf("iterations must be at least %d", MinIters)
)

// Mechanism hashes passwords with a fixed SCRAM hash function.
type Mechanism struct {
	gen      scram.HashGeneratorFcn
	saltSize int // bytes, equal to the hash output size
	name     string
}

// SHA1 returns the SCRAM-SHA-1 Mechanism.
func SHA1() *Mechanism {
	return &Mechanism{gen: scram.SHA1, saltSize: 20, name: "SCRAM-SHA-1"}
}

// SHA256 returns the SCRAM-SHA-256 Mechanism.
func SHA256() *Mechanism {
	return &Mechanism{
		gen: scram.SHA256, saltSize: 32, name: "SCRAM-SHA-256",
	}
}

// Hash implements the scram.Hasher interface of the core layer.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	if pass == "" {
		return "", ErrEmptyPassword
	}
	if iters < MinIters {
		return "", fmt.Errorf("%d iterations: %w", iters, ErrFewIters)
	}
	if salt == "" {
		b := make([]byte, m.saltSize)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("reading random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(b)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding salt: %w", err)
	}
	// user and authzID do not affect the stored credentials
	c, err := m.gen.NewClient("libweb", pass, "")
	if err != nil {
		return "", fmt.Errorf("preparing %s client: %w", m.name, err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt: string(rawSalt), Iters: iters,
	})
	enc := base64.StdEncoding.EncodeToString
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name, iters, salt, enc(sc.StoredKey), enc(sc.ServerKey),
	), nil
}
