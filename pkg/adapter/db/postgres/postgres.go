// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres adapts a PostgreSQL database, accessed through the
// GORM library and its pgx based driver, to the repo.Pool, repo.Conn,
// and repo.Tx interfaces. Repositories which are implemented in its
// sub-packages (e.g., booksrp) type assert the repo.Conn and repo.Tx
// arguments to *Conn and *Tx and use their GORM method in order to
// run queries.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/school-library/pkg/core/model"
)

// These constants represent the major, minor, and patch components of
// the database schema semantic version which is created by schemarp.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}

// SQLSTATE codes which are inspected by the repositories.
const (
	UniqueViolation  = "23505"
	CannotConnectNow = "57P03" // the database system is starting up
)

// HasCode reports whether err wraps a PostgreSQL error with the given
// SQLSTATE code.
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == code
}
