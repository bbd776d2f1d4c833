// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"

	"github.com/google/uuid"
)

// Role is the school-level role of a user. It decides which library
// operations a user may perform.
type Role string

// Known user roles.
const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleLibrarian Role = "librarian"
	RoleTeacher   Role = "teacher"
	RoleStudent   Role = "student"
	RoleParent    Role = "parent"
)

// ErrUnknownRole indicates that a stored or given role string is not
// one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates the r string as a known Role.
func ParseRole(r string) (Role, error) {
	role := Role(r)
	if !AnyRole.Has(role) {
		return "", ErrUnknownRole
	}
	return role, nil
}

// RoleSet is a set of roles which are allowed to perform some
// operation.
type RoleSet map[Role]struct{}

// NewRoleSet returns a RoleSet containing the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = struct{}{}
	}
	return rs
}

// Has reports whether r belongs to rs.
func (rs RoleSet) Has(r Role) bool {
	_, ok := rs[r]
	return ok
}

// These role sets are used by the use cases layer for gating the
// catalog, ledger, and circulation operations.
var (
	// StaffRoles may mutate the catalog and perform circulation.
	StaffRoles = NewRoleSet(RoleAdmin, RoleLibrarian, RoleManager)

	// AnyRole contains every known role.
	AnyRole = NewRoleSet(
		RoleAdmin, RoleManager, RoleLibrarian,
		RoleTeacher, RoleStudent, RoleParent,
	)
)

// User is a school member as kept in the users directory.
type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// Caller is the resolved identity of whoever invoked an operation.
type Caller struct {
	ID   uuid.UUID
	Name string
	Role Role
}
