// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema is the repository which manages the database roles and the
// library tables. It is used by the database initialization use case
// while connected with the AdminRole.
type Schema interface {
	Tx(Tx) SchemaTxQueryer
}

// SchemaTxQueryer contains the schema management queries. They are
// expected to run in one transaction, so a failed initialization
// leaves no partially created tables behind.
type SchemaTxQueryer interface {
	// CreateRoleIfNotExists creates the role (after adding the role
	// suffix) with the LOGIN attribute if it is missing.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// ChangePasswords updates the passwords of roles (pairwise with
	// the passwords slice). Passwords are hashed before being sent to
	// the DBMS, so the plaintext values may not end up in its logs.
	ChangePasswords(ctx context.Context, roles []Role, passwords []string) error

	// DropTables drops the library tables if they exist.
	DropTables(ctx context.Context) error

	// CreateTables creates the users, books, and loans tables and
	// their indices.
	CreateTables(ctx context.Context) error

	// GrantPrivileges allows role to read and write the library
	// tables.
	GrantPrivileges(ctx context.Context, role Role) error
}
