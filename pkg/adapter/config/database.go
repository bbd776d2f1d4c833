// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/momeni/school-library/pkg/adapter/config/settings"
	"github.com/momeni/school-library/pkg/adapter/db/memdb"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/school-library/pkg/adapter/hash/scram"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/repo"
	scrami "github.com/momeni/school-library/pkg/core/scram"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrNoRoles is returned by the role based methods of the Database
// settings when the memory driver is in use.
var ErrNoRoles = errors.New("the memory driver has no database roles")

// Database locates the library database and tells how the libweb
// should connect to it.
type Database struct {
	// Driver is either postgres (the default) or memory. The memory
	// driver keeps everything in the process memory, so its contents
	// are lost when the libweb stops. The remaining settings are only
	// used by the postgres driver.
	Driver string `yaml:"driver,omitempty"`

	Host string
	Port int
	Name string // database name

	// PassDir holds the .pgpass file with the passwords of the admin
	// and normal roles (and .pgpass.new while they are renewed).
	PassDir string `yaml:"pass-dir"`

	// RoleSuffix is appended to the role names, so several instances
	// (e.g., parallel integration tests) may share one cluster.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod is either scram-sha-256 (the default) or
	// scram-sha-1 and decides how the role passwords are hashed.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// MaxConns limits the open connections of each pool (10 if it is
	// missing) and SlowQuery is the threshold for logging a query as
	// a slow one (200ms if it is missing).
	MaxConns  *int               `yaml:"max-conns,omitempty"`
	SlowQuery *settings.Duration `yaml:"slow-query,omitempty"`

	hasher scrami.Hasher `yaml:"-"`
}

// Repos holds one repository per library table, all of them targeting
// the same database driver.
type Repos struct {
	Users repo.Users
	Books repo.Books
	Loans repo.Loans
}

// NewRepos instantiates the repositories of the configured driver.
func (d Database) NewRepos() Repos {
	if d.Driver == DriverMemory {
		return Repos{
			Users: memdb.NewUsers(),
			Books: memdb.NewBooks(),
			Loans: memdb.NewLoans(),
		}
	}
	return Repos{
		Users: usersrp.New(),
		Books: booksrp.New(),
		Loans: loansrp.New(),
	}
}

// Open creates a connection pool (using the normal role) and the
// matching repositories for the configured driver.
func (d Database) Open(ctx context.Context) (repo.Pool, Repos, error) {
	if d.Driver == DriverMemory {
		return memdb.NewPool(memdb.New()), d.NewRepos(), nil
	}
	p, err := d.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return nil, Repos{}, err
	}
	return p, d.NewRepos(), nil
}

// ConnectionPool creates a connection pool for the r role (suffixed
// by d.RoleSuffix). Its password is looked up from the .pgpass file in
// d.PassDir. If that fails, a former db init command may have renewed
// the passwords without finalizing, so .pgpass.new is tried too and
// it replaces .pgpass if it works.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	if d.Driver == DriverMemory {
		return nil, ErrNoRoles
	}
	opts := []postgres.PoolOption{
		postgres.WithMaxConns(*d.MaxConns),
		postgres.WithSlowQueryThreshold(time.Duration(*d.SlowQuery)),
	}
	connect := func(passFile string) (*postgres.Pool, error) {
		u, err := d.ConnectionURL(r, passFile)
		if err != nil {
			return nil, err
		}
		return postgres.NewPool(ctx, u, opts...)
	}
	current, pending := d.passFiles()
	p, err := connect(current)
	if err == nil {
		return p, nil
	}
	log.Warn(
		ctx, "retrying with the pending pass-file",
		log.Err("error", err),
		slog.String("path", pending),
	)
	p, err2 := connect(pending)
	if err2 != nil {
		return nil, fmt.Errorf(
			"connecting as %q: %w (pending pass-file: %w)",
			r+d.RoleSuffix, err, err2,
		)
	}
	if err = os.Rename(pending, current); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("finalizing pending pass-file: %w", err)
	}
	return p, nil
}

// passFiles returns the paths of the current and the pending pgpass
// files.
func (d Database) passFiles() (current, pending string) {
	return filepath.Join(d.PassDir, ".pgpass"),
		filepath.Join(d.PassDir, ".pgpass.new")
}

// ConnectionURL returns a postgresql:// URL for connecting as the r
// role (suffixed by d.RoleSuffix) with the password which is found in
// the passFile pgpass file.
func (d Database) ConnectionURL(r repo.Role, passFile string) (string, error) {
	user := string(r + d.RoleSuffix)
	pass, err := d.password(passFile, user)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, pass),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a Schema repository which suffixes the
// role names by d.RoleSuffix and hashes their passwords as asked by
// d.AuthMethod. ValidateAndNormalize must be called beforehand.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates a random password per role, records them
// in the pending .pgpass.new file (keeping the unrelated entries of
// .pgpass), and calls change to set them in the database. The returned
// finalizer moves the pending file over .pgpass and must be called
// after the change transaction commits.
//
// The change function receives the unsuffixed roles and must append
// d.RoleSuffix itself (as the schemarp repository does).
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	if d.Driver == DriverMemory {
		return nil, ErrNoRoles
	}
	passwords := make([]string, len(roles))
	entries := make([]pgpassEntry, len(roles))
	for i, r := range roles {
		if passwords[i], err = newPassword(); err != nil {
			return nil, fmt.Errorf("generating %q password: %w", r, err)
		}
		entries[i] = pgpassEntry{
			host: d.Host,
			port: strconv.Itoa(d.Port),
			db:   d.Name,
			user: string(r + d.RoleSuffix),
			pass: passwords[i],
		}
	}
	current, pending := d.passFiles()
	if entries, err = mergePgpass(current, entries); err != nil {
		return nil, err
	}
	if err = writePgpass(pending, entries); err != nil {
		return nil, fmt.Errorf("writing %q: %w", pending, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("changing passwords: %w", err)
	}
	return func() error {
		return os.Rename(pending, current)
	}, nil
}

// ValidateAndNormalize validates the database settings and fills
// their defaults. The hasher is instantiated based on d.AuthMethod.
func (d *Database) ValidateAndNormalize() error {
	switch d.Driver {
	case "":
		d.Driver = DriverPostgres
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
	if d.Driver == DriverMemory {
		return nil
	}
	switch {
	case d.Host == "":
		return errors.New("database host is empty")
	case d.Port <= 0 || d.Port > 65535:
		return fmt.Errorf("invalid database port: %d", d.Port)
	case d.Name == "":
		return errors.New("database name is empty")
	}
	settings.Default(&d.MaxConns, 10)
	if *d.MaxConns < 1 {
		return fmt.Errorf("max-conns must be positive: %d", *d.MaxConns)
	}
	settings.Default(&d.SlowQuery, settings.Duration(200*time.Millisecond))
	if *d.SlowQuery <= 0 {
		return fmt.Errorf("slow-query must be positive: %v", *d.SlowQuery)
	}
	if d.AuthMethod == "" {
		d.AuthMethod = "scram-sha-256"
	}
	hashers := map[string]func() *scram.Mechanism{
		"scram-sha-1":   scram.SHA1,
		"scram-sha-256": scram.SHA256,
	}
	newHasher, ok := hashers[d.AuthMethod]
	if !ok {
		return fmt.Errorf("unsupported auth-method: %q", d.AuthMethod)
	}
	d.hasher = newHasher()
	return nil
}
