// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer is an internal helper for the integration tests
// which need a real PostgreSQL server. It starts a temporary postgres
// container (with docker or podman) and connects to it as a superuser.
//
// With podman, the podman.service must be running and DOCKER_HOST must
// point to its socket, e.g.,
//
//	DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock
//
// Tests are skipped if no container can be started.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/stretchr/testify/require"
)

// PostgresVersion is the tag of the postgres image.
const PostgresVersion = "16"

// Start runs a postgres container and returns it along with a pool
// which is connected to it. The timeout bounds the start up phase.
// Both of them are released by t.Cleanup.
func Start(ctx context.Context, t testing.TB, timeout time.Duration) (
	*sqltestutil.PostgresContainer, *postgres.Pool,
) {
	t.Helper()
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(startCtx, PostgresVersion)
	if err != nil {
		t.Skipf("no postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Shutdown(ctx); err != nil {
			t.Errorf("shutting down postgres container: %v", err)
		}
	})
	pool := connect(startCtx, t, pg.ConnectionString())
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("closing the connections pool: %v", err)
		}
	})
	return pg, pool
}

// connect retries while the server is starting up or is unreachable,
// until ctx expires.
func connect(ctx context.Context, t testing.TB, url string) *postgres.Pool {
	for {
		pool, err := postgres.NewPool(ctx, url)
		if err == nil {
			return pool
		}
		var netErr net.Error
		retry := postgres.HasCode(err, postgres.CannotConnectNow) ||
			errors.As(err, &netErr)
		if !retry || ctx.Err() != nil {
			require.NoError(t, err, "cannot connect to test database")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// CreateTables (re)creates the library tables using the pool which
// belongs to a superuser. No role is created.
func CreateTables(ctx context.Context, t testing.TB, pool *postgres.Pool) {
	t.Helper()
	err := pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			ttx := tx.(*postgres.Tx)
			if err := schemarp.DropTables(ctx, ttx); err != nil {
				return err
			}
			return schemarp.CreateTables(ctx, ttx)
		})
	})
	require.NoError(t, err, "failed to create the library tables")
}
