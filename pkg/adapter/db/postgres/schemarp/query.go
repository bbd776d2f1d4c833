// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/scram"
)

// Tables lists the library tables in their creation order.
var Tables = []string{"users", "books", "loans"}

// The loans.book_id column has no foreign key, so returning a loan
// whose book was removed manually does not fail.
const createTablesSQL = `
CREATE TABLE users (
    id   uuid PRIMARY KEY,
    name text NOT NULL,
    role text NOT NULL
);
CREATE TABLE books (
    id               uuid PRIMARY KEY,
    title            text NOT NULL,
    author           text NOT NULL,
    isbn             text,
    category         text NOT NULL DEFAULT '',
    copies_total     integer NOT NULL CHECK (copies_total >= 0),
    copies_available integer NOT NULL,
    description      text,
    location         text,
    cover_url        text,
    added_by         uuid NOT NULL,
    created_at       timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX books_category_idx ON books (category);
CREATE TABLE loans (
    id          uuid PRIMARY KEY,
    book_id     uuid NOT NULL,
    borrower_id uuid NOT NULL,
    borrow_date timestamptz NOT NULL,
    due_date    timestamptz NOT NULL,
    status      text NOT NULL CHECK (status IN ('active', 'returned')),
    return_date timestamptz,
    notes       text NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX loans_one_active_idx ON loans (book_id, borrower_id)
    WHERE status = 'active';
CREATE INDEX loans_status_due_date_idx ON loans (status, due_date);
CREATE INDEX loans_borrower_idx ON loans (borrower_id, borrow_date);
`

func ident(roleSuffix, role repo.Role) string {
	return pgx.Identifier{string(role + roleSuffix)}.Sanitize()
}

// CreateRoleIfNotExists creates the `role` role if it does not
// exist right now. The login option is enabled for the created role,
// but no password is set for it. The ChangePasswords function may be
// used for setting its password.
//
// The `role` role name will be suffixed by `roleSuffix` if it is not
// empty.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, role repo.Role,
) error {
	var n int64
	err := q.GORM(ctx).Raw(
		"SELECT count(*) FROM pg_roles WHERE rolname = ?",
		string(role+roleSuffix),
	).Scan(&n).Error
	if err != nil {
		return fmt.Errorf("querying pg_roles: %w", err)
	}
	if n > 0 {
		return nil
	}
	sql := fmt.Sprintf("CREATE ROLE %s WITH LOGIN", ident(roleSuffix, role))
	if _, err = q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("creating role: %w", err)
	}
	return nil
}

// ChangePasswords updates the passwords of the given roles in the
// current transaction. The roles and passwords slices must have the
// same number of entries, so they can be used in pair.
//
// The `hasher` is used for hashing of the `passwords` before sending
// them to the DBMS, so they may not leak in plaintext.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return fmt.Errorf(
			"got %d roles and %d passwords", len(roles), len(passwords),
		)
	}
	if hasher == nil {
		return errors.New("no password hasher")
	}
	for i, r := range roles {
		h, err := hasher.Hash(passwords[i], "", 15000)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", r, err)
		}
		sql := fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD %s",
			ident(roleSuffix, r), quoteLiteral(h),
		)
		if _, err = tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("altering role %q: %w", r, err)
		}
	}
	return nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// DropTables drops the library tables (if they exist).
func DropTables[Q postgres.Queryer](ctx context.Context, q Q) error {
	_, err := q.Exec(ctx, "DROP TABLE IF EXISTS loans, books, users")
	if err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	return nil
}

// CreateTables creates the library tables and their indices.
func CreateTables[Q postgres.Queryer](ctx context.Context, q Q) error {
	for _, stmt := range strings.Split(createTablesSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// GrantPrivileges allows the `role` role (after adding `roleSuffix`)
// to read and write all library tables.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, role repo.Role,
) error {
	sql := fmt.Sprintf(
		"GRANT SELECT, INSERT, UPDATE, DELETE ON %s TO %s",
		strings.Join(Tables, ", "), ident(roleSuffix, role),
	)
	if _, err := q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("granting privileges: %w", err)
	}
	return nil
}
