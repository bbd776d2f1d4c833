// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memdb is an in-process implementation of the repository
// ports. It keeps users, books, and loans in maps which are guarded
// by one mutex. Statements which run on a Conn take the mutex for
// their own duration, while a Tx holds it from its beginning to its
// end, so transactions are serialized and observe no interleaving.
// A Tx works on the live maps and restores a snapshot of them if its
// handler fails or panics.
//
// The memdb is used by the use cases tests and by the serve command
// when the database section of the configuration file is set to the
// in-memory driver (e.g., for demos).
package memdb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods because memdb
// has no SQL engine.
var ErrRawSQL = errors.New("memdb does not run raw SQL statements")

// Store holds the in-memory tables.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	books map[uuid.UUID]model.Book
	loans map[uuid.UUID]model.Loan
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]model.User),
		books: make(map[uuid.UUID]model.Book),
		loans: make(map[uuid.UUID]model.Loan),
	}
}

type snapshot struct {
	users map[uuid.UUID]model.User
	books map[uuid.UUID]model.Book
	loans map[uuid.UUID]model.Loan
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users: maps.Clone(s.users),
		books: maps.Clone(s.books),
		loans: maps.Clone(s.loans),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users, s.books, s.loans = snap.users, snap.books, snap.loans
}

// Pool hands out connections to a Store.
type Pool struct {
	s *Store
}

// NewPool returns a Pool over the s Store.
func NewPool(s *Store) *Pool {
	return &Pool{s: s}
}

// Conn calls f with a new connection to the store.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f(ctx, &Conn{s: p.s})
}

// Close is a no-op. The Store stays usable by other pools.
func (p *Pool) Close() error {
	return nil
}

// Conn is a connection to a Store.
type Conn struct {
	s *Store
}

// Tx runs f in a transaction. The store mutex is held until f returns.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	snap := c.s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			c.s.restore(snap)
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			c.s.restore(snap)
			err = fmt.Errorf("handler: %w", err)
		}
	}()
	return f(ctx, &Tx{s: c.s})
}

// Exec always fails with ErrRawSQL.
func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

// Query always fails with ErrRawSQL.
func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *Conn) IsConn() {
}

// Tx is a transaction on a Store. Its methods may only be called
// while its handler is running.
type Tx struct {
	s *Store
}

// Exec always fails with ErrRawSQL.
func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

// Query always fails with ErrRawSQL.
func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *Tx) IsTx() {
}

// queryer runs a statement on a store, taking its mutex only if it
// is not held by an enclosing transaction.
type queryer struct {
	s      *Store
	locked bool
}

func connQueryer(c repo.Conn) queryer {
	return queryer{s: c.(*Conn).s, locked: false}
}

func txQueryer(tx repo.Tx) queryer {
	return queryer{s: tx.(*Tx).s, locked: true}
}

func (q queryer) run(f func(s *Store) error) error {
	if !q.locked {
		q.s.mu.Lock()
		defer q.s.mu.Unlock()
	}
	return f(q.s)
}
