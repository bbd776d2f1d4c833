// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/school-library/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool is a database connections pool which implements repo.Pool.
type Pool struct {
	db *gorm.DB
}

type poolSettings struct {
	maxConns    int
	maxIdleTime time.Duration
	slowQuery   time.Duration
}

// PoolOption customizes a Pool while it is created by NewPool.
type PoolOption func(ps *poolSettings) error

// WithMaxConns limits the number of open connections of a pool.
// Each checkout or return holds one connection until its transaction
// commits, so n bounds the concurrent circulation requests too.
func WithMaxConns(n int) PoolOption {
	return func(ps *poolSettings) error {
		if n < 1 {
			return fmt.Errorf("max conns must be positive: %d", n)
		}
		ps.maxConns = n
		return nil
	}
}

// WithSlowQueryThreshold makes queries which take longer than d to
// be logged with warning level.
func WithSlowQueryThreshold(d time.Duration) PoolOption {
	return func(ps *poolSettings) error {
		if d <= 0 {
			return errors.New("slow query threshold must be positive")
		}
		ps.slowQuery = d
		return nil
	}
}

// NewPool connects to the url database and checks the connection.
// GORM logs are written to the default slog logger with warning
// level. Query parameters are not logged since they may carry the
// personal data of borrowers.
func NewPool(
	ctx context.Context, url string, opts ...PoolOption,
) (*Pool, error) {
	ps := poolSettings{
		maxConns:    10,
		maxIdleTime: 5 * time.Minute,
		slowQuery:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(&ps); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             ps.slowQuery,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
			},
		),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(ps.maxConns)
	sqlDB.SetMaxIdleConns(ps.maxConns)
	sqlDB.SetConnMaxIdleTime(ps.maxIdleTime)
	pool := &Pool{db: gdb}
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

// Conn acquires a connection and calls f with it. The connection is
// released when f returns.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	return p.db.WithContext(ctx).Connection(func(c *gorm.DB) error {
		return f(ctx, &Conn{runner{c}})
	})
}

// Close closes all connections of the pool.
func (p *Pool) Close() error {
	db, err := p.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
