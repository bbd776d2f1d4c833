// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package auth carries the authenticated subject of a request through
// its context. The adapters layer (e.g., a bearer token middleware)
// stores the subject with WithSubject after verifying the credentials
// and the use cases layer reads it back with Subject in order to
// resolve the caller identity and role.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
)

type subjectKey struct{}

// WithSubject returns a copy of ctx which carries the id subject.
func WithSubject(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, subjectKey{}, id)
}

// Subject returns the subject which was stored in ctx, if any.
func Subject(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(subjectKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Authorizer resolves the caller of an operation and checks its role
// against the allowed role set. It is implemented by the identityuc
// package and consumed by the catalog, ledger, and circulation use
// cases which call it before touching any data.
type Authorizer interface {
	Require(ctx context.Context, allowed model.RoleSet) (*model.Caller, error)
}
