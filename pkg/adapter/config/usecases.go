// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"time"

	"github.com/momeni/school-library/pkg/adapter/config/settings"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/booksuc"
	"github.com/momeni/school-library/pkg/core/usecase/circulationuc"
	"github.com/momeni/school-library/pkg/core/usecase/identityuc"
	"github.com/momeni/school-library/pkg/core/usecase/loansuc"
	"github.com/momeni/school-library/pkg/core/usecase/schemauc"
)

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Circulation Circulation // checkout and return settings
}

// Circulation contains the configuration settings for the circulation
// use cases. Fields are pointers, so missing settings may be detected
// and left for the use case defaults.
type Circulation struct {
	// DefaultLoanPeriod is the loan duration when a checkout request
	// has no due date.
	DefaultLoanPeriod *settings.Duration `yaml:"default-loan-period,omitempty"`
	// MinDefaultLoanPeriod is the inclusive minimum acceptable value
	// for the DefaultLoanPeriod setting.
	// A missing value indicates that there is no lower bound.
	MinDefaultLoanPeriod *settings.Duration `yaml:"default-loan-period-minimum,omitempty"`
	// MaxDefaultLoanPeriod is the inclusive maximum acceptable value
	// for the DefaultLoanPeriod setting.
	// A missing value indicates that there is no upper bound.
	MaxDefaultLoanPeriod *settings.Duration `yaml:"default-loan-period-maximum,omitempty"`
}

// NewUseCase instantiates a new circulation use case based on the
// settings in the c struct.
func (c Circulation) NewUseCase(
	p repo.Pool, b repo.Books, l repo.Loans, a auth.Authorizer,
) (*circulationuc.UseCase, error) {
	opts := make([]circulationuc.Option, 0, 1)
	if c.DefaultLoanPeriod != nil {
		d := time.Duration(*c.DefaultLoanPeriod)
		opts = append(opts, circulationuc.WithDefaultLoanPeriod(d))
	}
	return circulationuc.New(p, b, l, a, opts...)
}

// NewIdentityUseCase instantiates the identity use case which acts as
// the authorizer of other use cases.
func (c *Config) NewIdentityUseCase(
	p repo.Pool, rr Repos,
) *identityuc.UseCase {
	return identityuc.New(p, rr.Users)
}

// NewBooksUseCase instantiates a new books use case.
func (c *Config) NewBooksUseCase(
	p repo.Pool, rr Repos, a auth.Authorizer,
) (*booksuc.UseCase, error) {
	return booksuc.New(p, rr.Books, a)
}

// NewLoansUseCase instantiates a new loans use case.
func (c *Config) NewLoansUseCase(
	p repo.Pool, rr Repos, a auth.Authorizer,
) (*loansuc.UseCase, error) {
	return loansuc.New(p, rr.Books, rr.Loans, a)
}

// NewCirculationUseCase instantiates a new circulation use case based
// on the settings in the c struct.
func (c *Config) NewCirculationUseCase(
	p repo.Pool, rr Repos, a auth.Authorizer,
) (*circulationuc.UseCase, error) {
	return c.Usecases.Circulation.NewUseCase(p, rr.Books, rr.Loans, a)
}

// NewSchemaUseCase instantiates a new schema use case which may
// initialize the database and seed it by the demo data.
func (c *Config) NewSchemaUseCase(rr Repos) *schemauc.UseCase {
	return schemauc.New(c, rr.Users, rr.Books)
}

// ConnectionPool creates a database connection pool for the r role
// using the connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	return c.Database.ConnectionPool(ctx, r)
}

// NewSchemaRepo instantiates a fresh Schema repository.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// RenewPasswords generates and records new passwords for roles.
// See Database.RenewPasswords for details.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}
