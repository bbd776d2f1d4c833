// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema is an internal helper for the integration tests
// which verifies the library tables (and their indices) as created by
// the schemarp package and the demo rows as inserted by the schemauc
// package. Presence of extra rows is acceptable.
package schema

import (
	"context"
	"slices"
	"testing"

	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/schemauc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columns lists the expected columns of each library table.
var columns = map[string][]string{
	"users": {"id", "name", "role"},
	"books": {
		"added_by", "author", "category", "copies_available",
		"copies_total", "cover_url", "created_at", "description", "id",
		"isbn", "location", "title",
	},
	"loans": {
		"book_id", "borrow_date", "borrower_id", "due_date", "id",
		"notes", "return_date", "status",
	},
}

var indices = []string{
	"books_category_idx",
	"loans_borrower_idx",
	"loans_one_active_idx",
	"loans_status_due_date_idx",
}

// Verifier wraps a database connection which is used for querying
// the library tables.
type Verifier struct {
	c repo.Conn
}

// New instantiates a Verifier, wrapping the `c` database connection.
func New(c repo.Conn) *Verifier {
	return &Verifier{c}
}

// VerifySchema checks the columns of the library tables and their
// indices. Failures are reported using the `t` testing argument.
func (v *Verifier) VerifySchema(ctx context.Context, t *testing.T) {
	for table, expected := range columns {
		cols := v.strings(ctx, t, `SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY column_name`, table)
		assert.Equal(t, expected, cols, "columns of %s table", table)
	}
	idx := v.strings(ctx, t, `SELECT indexname
FROM pg_indexes
WHERE schemaname = current_schema() AND indexname LIKE '%\_idx'
ORDER BY indexname`)
	assert.Equal(t, indices, idx)
}

// VerifyDevData checks that one user per role and the demo books
// (with all of their copies available) exist.
func (v *Verifier) VerifyDevData(ctx context.Context, t *testing.T) {
	roles := v.strings(ctx, t,
		`SELECT DISTINCT role FROM users ORDER BY role`,
	)
	for r := range model.AnyRole {
		assert.True(t, slices.Contains(roles, string(r)), "role %s", r)
	}
	for _, b := range schemauc.DemoBooks() {
		rows, err := v.c.Query(ctx, `SELECT copies_total, copies_available
FROM books WHERE isbn = $1`, *b.ISBN)
		require.NoError(t, err)
		found := rows.Next()
		var total, available int
		if found {
			require.NoError(t, rows.Scan(&total, &available))
		}
		rows.Close()
		require.NoError(t, rows.Err())
		if assert.True(t, found, "book %q", b.Title) {
			assert.Equal(t, b.CopiesTotal, total, "book %q", b.Title)
			assert.Equal(t, total, available, "book %q", b.Title)
		}
	}
}

func (v *Verifier) strings(
	ctx context.Context, t *testing.T, sql string, args ...any,
) []string {
	rows, err := v.c.Query(ctx, sql, args...)
	require.NoError(t, err)
	defer rows.Close()
	var ss []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		ss = append(ss, s)
	}
	require.NoError(t, rows.Err())
	return ss
}
