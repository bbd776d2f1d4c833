// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/config"
	"github.com/momeni/school-library/pkg/adapter/db/memdb"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/schemauc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ schemauc.Settings = (*config.Config)(nil)

func ExampleParse() {
	c, err := config.Parse([]byte(`
database:
    host: 127.0.0.1
    port: 5432
    name: libweb
    pass-dir: /var/lib/libweb/db
usecases:
    circulation:
        default-loan-period: 10d
        default-loan-period-maximum: 336h
versions:
    database: 1.0.0
    config: 1.0.0
`))
	fmt.Println(err)
	fmt.Println(
		c.Database.Driver, c.Database.AuthMethod,
		*c.Database.MaxConns, *c.Database.SlowQuery,
	)
	fmt.Println(*c.Gin.Logger, *c.Gin.RateLimit.RPS, len(c.Gin.Throttle()))
	fmt.Println(c.Auth.Issuer, c.Auth.SecretEnv, c.Auth.TTL())
	fmt.Println(c.Logging.Level, c.Logging.Format)
	fmt.Println(
		*c.Usecases.Circulation.DefaultLoanPeriod,
		time.Duration(*c.Usecases.Circulation.DefaultLoanPeriod),
	)
	// Output:
	// <nil>
	// postgres scram-sha-256 10 200ms
	// false 0 0
	// libweb LIBWEB_JWT_SECRET 12h0m0s
	// info text
	// 10d 240h0m0s
}

func TestParseRejections(t *testing.T) {
	cases := map[string]string{
		"empty": "",
		"unknown field": `
database: {driver: memory}
colour: blue
versions: {config: 1.0.0}
`,
		"newer config minor": `
database: {driver: memory}
versions: {config: 1.1.0}
`,
		"unknown driver": `
database: {driver: sqlite}
versions: {config: 1.0.0}
`,
		"missing host": `
database: {port: 5432, name: libweb}
versions: {database: 1.0.0, config: 1.0.0}
`,
		"unknown auth method": `
database: {host: db, port: 5432, name: libweb, auth-method: md5}
versions: {database: 1.0.0, config: 1.0.0}
`,
		"negative rps": `
database: {driver: memory}
gin: {rate-limit: {rps: -1}}
versions: {config: 1.0.0}
`,
		"unknown log level": `
database: {driver: memory}
log: {level: loud}
versions: {config: 1.0.0}
`,
		"zero max conns": `
database: {host: db, port: 5432, name: libweb, max-conns: 0}
versions: {database: 1.0.0, config: 1.0.0}
`,
		"loan period above maximum": `
database: {driver: memory}
usecases:
    circulation:
        default-loan-period: 30d
        default-loan-period-maximum: 21d
versions: {config: 1.0.0}
`,
		"malformed version": `
database: {driver: memory}
versions: {config: 1.0}
`,
		"inverted bounds": `
database: {driver: memory}
usecases:
    circulation:
        default-loan-period-minimum: 72h
        default-loan-period-maximum: 24h
versions: {config: 1.0.0}
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseVersionMismatch(t *testing.T) {
	_, err := config.Parse([]byte(`
database: {host: db, port: 5432, name: libweb}
versions: {database: 2.0.0, config: 1.0.0}
`))
	var msve *cerr.MismatchingSemVerError
	require.True(t, errors.As(err, &msve), "got %v", err)
	assert.Equal(t, "expected v1.0.0, but got v2.0.0", msve.Error())
}

func TestLoadSampleConfigs(t *testing.T) {
	for _, name := range []string{"sample-config.yaml", "demo-config.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(filepath.Join("../../../configs", name))
			assert.NoError(t, err)
		})
	}
}

func TestMemoryDriver(t *testing.T) {
	c, err := config.Parse([]byte(`
database: {driver: memory}
gin: {rate-limit: {rps: 2}}
versions: {config: 1.0.0}
`))
	require.NoError(t, err)
	assert.Len(t, c.Gin.Throttle(), 1)
	assert.Equal(t, 2, *c.Gin.RateLimit.Burst)

	p, rr, err := c.Database.Open(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memdb.Pool{}, p)
	assert.IsType(t, &memdb.Books{}, rr.Books)

	_, err = c.ConnectionPool(context.Background(), repo.NormalRole)
	assert.ErrorIs(t, err, config.ErrNoRoles)
}

func TestPassFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := config.Parse([]byte(fmt.Sprintf(`
database:
    host: db.local
    port: 5432
    name: libweb
    pass-dir: %s
    role-suffix: _t1
versions: {database: 1.0.0, config: 1.0.0}
`, dir)))
	require.NoError(t, err)

	var changed []repo.Role
	finalize, err := c.RenewPasswords(
		context.Background(),
		func(_ context.Context, roles []repo.Role, pp []string) error {
			changed = roles
			require.Len(t, pp, len(roles))
			return nil
		},
		repo.AdminRole, repo.NormalRole,
	)
	require.NoError(t, err)
	assert.Equal(t, []repo.Role{repo.AdminRole, repo.NormalRole}, changed)
	require.NoError(t, finalize())

	u, err := c.Database.ConnectionURL(
		repo.NormalRole, filepath.Join(dir, ".pgpass"),
	)
	require.NoError(t, err)
	assert.Regexp(t, `^postgresql://libweb_t1:[^@]+@db\.local:5432/libweb$`, u)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".pgpass"), []byte("# nothing\n"), 0o600,
	))
	_, err = c.Database.ConnectionURL(
		repo.NormalRole, filepath.Join(dir, ".pgpass"),
	)
	assert.Error(t, err)
}

func TestNewAuthenticator(t *testing.T) {
	c, err := config.Parse([]byte(`
database: {driver: memory}
auth: {secret-env: LIBWEB_TEST_JWT_SECRET}
versions: {config: 1.0.0}
`))
	require.NoError(t, err)
	t.Setenv("LIBWEB_TEST_JWT_SECRET", "")
	_, err = c.Auth.NewAuthenticator()
	assert.Error(t, err)

	t.Setenv("LIBWEB_TEST_JWT_SECRET", "s3cret")
	a, err := c.Auth.NewAuthenticator()
	require.NoError(t, err)
	_, err = a.Issue(uuid.New(), time.Minute)
	assert.NoError(t, err)
}
