// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/momeni/school-library/internal/test/dbcontainer"
	"github.com/momeni/school-library/internal/test/schema"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/school-library/pkg/adapter/hash/scram"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/schemauc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationSchema(t *testing.T) {
	ctx := context.Background()
	pg, pool := dbcontainer.Start(ctx, t, 60*time.Second)
	suffix := repo.Role("_it")
	password := "normal-role-secret"
	sr := schemarp.New(suffix, scram.SHA256())
	err := pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := sr.Tx(tx)
			if err := q.DropTables(ctx); err != nil {
				return err
			}
			for i := 0; i < 2; i++ { // must be idempotent
				err := q.CreateRoleIfNotExists(ctx, repo.NormalRole)
				if err != nil {
					return err
				}
			}
			if err := q.CreateTables(ctx); err != nil {
				return err
			}
			if err := q.GrantPrivileges(ctx, repo.NormalRole); err != nil {
				return err
			}
			return q.ChangePasswords(
				ctx, []repo.Role{repo.NormalRole}, []string{password},
			)
		})
	})
	require.NoError(t, err)

	err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		schema.New(c).VerifySchema(ctx, t)
		return nil
	})
	require.NoError(t, err)

	u, err := url.Parse(pg.ConnectionString())
	require.NoError(t, err)
	u.User = url.UserPassword(string(repo.NormalRole+suffix), password)
	normal, err := postgres.NewPool(ctx, u.String())
	require.NoError(t, err, "the normal role must be able to log in")
	defer normal.Close()

	suc := schemauc.New(nil, usersrp.New(), booksrp.New())
	uu, err := suc.Seed(ctx, normal)
	require.NoError(t, err)
	assert.Len(t, uu, len(schemauc.DemoUsers()))

	err = normal.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		schema.New(c).VerifyDevData(ctx, t)
		_, err := c.Exec(ctx, "DROP TABLE loans")
		assert.Error(t, err, "the normal role may not drop tables")
		return nil
	})
	require.NoError(t, err)
}

func TestIntegrationLoansOneActive(t *testing.T) {
	ctx := context.Background()
	_, pool := dbcontainer.Start(ctx, t, 60*time.Second)
	dbcontainer.CreateTables(ctx, t, pool)
	insert := `INSERT INTO loans (id, book_id, borrower_id, borrow_date,
due_date, status) VALUES (gen_random_uuid(), $1, $2, now(),
now() + interval '1 day', $3)`
	err := pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		book, borrower := "6f1c1e9e-3c35-4a4e-9f3a-6c1b0e1f0a01",
			"6f1c1e9e-3c35-4a4e-9f3a-6c1b0e1f0a02"
		_, err := c.Exec(ctx, insert, book, borrower, "returned")
		require.NoError(t, err)
		_, err = c.Exec(ctx, insert, book, borrower, "returned")
		require.NoError(t, err, "returned loans may repeat")
		_, err = c.Exec(ctx, insert, book, borrower, "active")
		require.NoError(t, err)
		_, err = c.Exec(ctx, insert, book, borrower, "active")
		assert.True(t, postgres.HasCode(err, postgres.UniqueViolation))
		_, err = c.Exec(ctx, insert, book, borrower, "lost")
		assert.Error(t, err, "unknown status is rejected")
		return nil
	})
	require.NoError(t, err)
}
