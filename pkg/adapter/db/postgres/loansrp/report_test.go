// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveLoansQuery(t *testing.T) {
	q, args, err := activeLoansQuery()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q, "SELECT "), q)
	assert.Contains(t, q, `LEFT JOIN "books" AS "b"`)
	assert.Contains(t, q, `LEFT JOIN "users" AS "u"`)
	assert.Regexp(t, `"l"\."status" = \$\d+`, q)
	assert.Contains(t, q, `ORDER BY "l"."due_date" ASC, "l"."id" ASC`)
	assert.Contains(t, args, "active")
}

func TestCountActiveQuery(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	q, args, err := countActiveQuery(now)
	require.NoError(t, err)
	assert.Regexp(t, `FILTER \(WHERE due_date < \$\d+\)`, q)
	assert.Contains(t, q, `FROM "loans"`)
	assert.Contains(t, args, now)
	assert.Contains(t, args, "active")
	assert.Len(t, args, 2)
}
