// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemauc provides the database initialization use case.
// It drops and recreates the library tables using the admin database
// role, creates the normal role (if it is missing) and grants it the
// required privileges, and renews the passwords of both roles.
// The development initialization also fills the tables with demo
// users and books.
package schemauc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// Settings represents the expectations of the schema initialization
// use case from the configuration settings. It is implemented by the
// adapter layer config package.
type Settings interface {
	// ConnectionPool creates a connection pool for the r role.
	ConnectionPool(ctx context.Context, r repo.Role) (repo.Pool, error)

	// NewSchemaRepo instantiates a schema management repository
	// which hashes passwords as expected by the target database.
	NewSchemaRepo() repo.Schema

	// RenewPasswords generates new passwords for roles, records them
	// in a temporary passwords file, and calls change in order to
	// update them in the database. The returned finalizer must be
	// called after the change transaction commits, so the temporary
	// passwords file replaces the main one.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context, roles []repo.Role, passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)
}

// UseCase represents the database initialization use case.
type UseCase struct {
	settings Settings
	schemarp repo.Schema
	usersrp  repo.Users
	booksrp  repo.Books
}

// New instantiates a schema initialization use case. The users and
// books repositories are used for seeding the demo data. A nil ss is
// accepted if only Seed is going to be called.
func New(ss Settings, u repo.Users, b repo.Books) *UseCase {
	suc := &UseCase{settings: ss, usersrp: u, booksrp: b}
	if ss != nil {
		suc.schemarp = ss.NewSchemaRepo()
	}
	return suc
}

// InitProd recreates the library tables, leaving them empty.
func (suc *UseCase) InitProd(ctx context.Context) error {
	if err := suc.recreate(ctx); err != nil {
		return fmt.Errorf("recreating tables: %w", err)
	}
	log.Info(ctx, "database is initialized for production")
	return nil
}

// InitDev recreates the library tables, connects with the normal role,
// and fills them with the demo users and books. The seeded users are
// returned, so the caller may issue tokens for them.
func (suc *UseCase) InitDev(ctx context.Context) ([]model.User, error) {
	if err := suc.recreate(ctx); err != nil {
		return nil, fmt.Errorf("recreating tables: %w", err)
	}
	p, err := suc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return nil, fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	uu, err := suc.Seed(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "database is initialized for development",
		slog.Int("users", len(uu)),
	)
	return uu, nil
}

// Seed inserts the demo users and books using the p pool in one
// transaction and returns the inserted users.
func (suc *UseCase) Seed(
	ctx context.Context, p repo.Pool,
) ([]model.User, error) {
	uu, bb := DemoUsers(), DemoBooks()
	err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			users := suc.usersrp.Tx(tx)
			for i := range uu {
				if err := users.Create(ctx, &uu[i]); err != nil {
					return fmt.Errorf("creating user %q: %w", uu[i].Name, err)
				}
			}
			books := suc.booksrp.Tx(tx)
			for i := range bb {
				bb[i].AddedBy = uu[0].ID
				if err := books.Create(ctx, &bb[i]); err != nil {
					return fmt.Errorf("creating book %q: %w", bb[i].Title, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("seeding demo data: %w", err)
	}
	return uu, nil
}

func (suc *UseCase) recreate(ctx context.Context) error {
	p, err := suc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	var finalizer func() error
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := suc.schemarp.Tx(tx)
			if err := q.DropTables(ctx); err != nil {
				return err
			}
			if err := q.CreateRoleIfNotExists(
				ctx, repo.NormalRole,
			); err != nil {
				return fmt.Errorf("creating normal role: %w", err)
			}
			if err := q.CreateTables(ctx); err != nil {
				return err
			}
			if err := q.GrantPrivileges(
				ctx, repo.NormalRole,
			); err != nil {
				return fmt.Errorf("granting normal role privs: %w", err)
			}
			finalizer, err = suc.settings.RenewPasswords(
				ctx, q.ChangePasswords, repo.AdminRole, repo.NormalRole,
			)
			if err != nil {
				return fmt.Errorf("RenewPasswords: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}
