// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to create or drop the library tables and manage
// the database user roles.
package schemarp

import (
	"context"

	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/scram"
)

// Repo represents a schema management repository.
type Repo struct {
	roleSuffix repo.Role
	hasher     scram.Hasher
}

// New instantiates a schema management Repo struct. The roleSuffix
// is appended to all role names and may be empty. The hasher is used
// for hashing the role passwords as expected by the DBMS.
func New(roleSuffix repo.Role, hasher scram.Hasher) *Repo {
	return &Repo{roleSuffix: roleSuffix, hasher: hasher}
}

type txQueryer struct {
	*postgres.Tx
	roleSuffix repo.Role
	hasher     scram.Hasher
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Unwrapped transaction will be wrapped and returned as an
// instance of repo.SchemaTxQueryer interface, so it can be used in
// the use cases layer without requiring to type assert again and again.
//
// All schema operations are performed in one transaction, so roles
// and their passwords become visible only together with the tables.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{
		Tx: tt, roleSuffix: schema.roleSuffix, hasher: schema.hasher,
	}
}

func (tq txQueryer) CreateRoleIfNotExists(
	ctx context.Context, role repo.Role,
) error {
	return CreateRoleIfNotExists(ctx, tq.Tx, tq.roleSuffix, role)
}

func (tq txQueryer) ChangePasswords(
	ctx context.Context, roles []repo.Role, passwords []string,
) error {
	return ChangePasswords(
		ctx, tq.Tx, tq.roleSuffix, tq.hasher, roles, passwords,
	)
}

func (tq txQueryer) DropTables(ctx context.Context) error {
	return DropTables(ctx, tq.Tx)
}

func (tq txQueryer) CreateTables(ctx context.Context) error {
	return CreateTables(ctx, tq.Tx)
}

func (tq txQueryer) GrantPrivileges(
	ctx context.Context, role repo.Role,
) error {
	return GrantPrivileges(ctx, tq.Tx, tq.roleSuffix, role)
}
