// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/school-library/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is the type constraint of the generic query functions of
// the repositories, so one implementation serves both of the
// connection and transaction queryers.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	GORM(ctx context.Context) *gorm.DB
}

// runner runs the raw statements of a Conn or a Tx. Parameters may be
// numbered like $1, $2, etc. or use the GORM ? and @name placeholders.
type runner struct {
	db *gorm.DB
}

// Exec runs sql with args and returns the number of affected rows.
// Without args, sql may hold several semicolon separated statements.
func (r runner) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	res := r.db.WithContext(ctx).Exec(sql, args...)
	if err := res.Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Query runs one sql statement and returns its result set. Another
// statement may not run on the same Conn or Tx until it is closed.
func (r runner) Query(
	ctx context.Context, sql string, args ...any,
) (repo.Rows, error) {
	rows, err := r.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return resultSet{rows}, nil
}

// GORM returns the underlying *gorm.DB which operates on ctx, so
// the repositories may build their queries using GORM.
func (r runner) GORM(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Conn is an acquired database connection which implements repo.Conn.
type Conn struct {
	runner
}

// IsConn marks Conn as a repo.Conn.
func (c *Conn) IsConn() {
}

// Tx begins a READ COMMITTED transaction and calls f with it.
// The transaction is committed if f returns nil and is rolled back if
// f fails or panics. A panic is reported as an error after rollback.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	tx := c.db.WithContext(ctx).Begin(&sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		r := recover()
		switch {
		case r == nil && err == nil:
			if err = tx.Commit().Error; err != nil {
				err = fmt.Errorf("commit: %w", err)
			}
			return
		case r != nil:
			err = fmt.Errorf("panicked: %v", r)
		}
		if rbErr := tx.Rollback().Error; rbErr != nil {
			err = fmt.Errorf("%w, rollback: %w", err, rbErr)
		}
	}()
	return f(ctx, &Tx{runner{tx}})
}

// Tx is an ongoing database transaction which implements repo.Tx.
// It may not be used concurrently.
type Tx struct {
	runner
}

// IsTx marks Tx as a repo.Tx.
func (tx *Tx) IsTx() {
}

// resultSet adapts *sql.Rows to the repo.Rows interface.
type resultSet struct {
	*sql.Rows
}

// Close releases the rows. Its error is reported by Err too.
func (rs resultSet) Close() {
	_ = rs.Rows.Close()
}
