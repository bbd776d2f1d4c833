// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrp implements the repo.Books interface for the
// PostgreSQL database. Queries are implemented by generic functions
// which accept both of *postgres.Conn and *postgres.Tx, while the row
// locking and counter manipulation functions need a *postgres.Tx.
package booksrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (books *Repo) Conn(c repo.Conn) repo.BooksConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) List(ctx context.Context, q model.BookQuery) ([]model.Book, error) {
	return List(ctx, cq.Conn, q)
}

func (cq connQueryer) Get(ctx context.Context, bookID uuid.UUID) (*model.Book, error) {
	return Get(ctx, cq.Conn, bookID)
}

func (cq connQueryer) Create(ctx context.Context, b *model.Book) error {
	return Create(ctx, cq.Conn, b)
}

func (cq connQueryer) Patch(ctx context.Context, bookID uuid.UUID, p *model.BookPatch) (*model.Book, error) {
	return Patch(ctx, cq.Conn, bookID, p)
}

func (cq connQueryer) Totals(ctx context.Context) (int64, int64, int64, error) {
	return Totals(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

func (books *Repo) Tx(tx repo.Tx) repo.BooksTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) List(ctx context.Context, q model.BookQuery) ([]model.Book, error) {
	return List(ctx, tq.Tx, q)
}

func (tq txQueryer) Get(ctx context.Context, bookID uuid.UUID) (*model.Book, error) {
	return Get(ctx, tq.Tx, bookID)
}

func (tq txQueryer) Create(ctx context.Context, b *model.Book) error {
	return Create(ctx, tq.Tx, b)
}

func (tq txQueryer) Patch(ctx context.Context, bookID uuid.UUID, p *model.BookPatch) (*model.Book, error) {
	return Patch(ctx, tq.Tx, bookID, p)
}

func (tq txQueryer) Totals(ctx context.Context) (int64, int64, int64, error) {
	return Totals(ctx, tq.Tx)
}

func (tq txQueryer) GetForUpdate(ctx context.Context, bookID uuid.UUID) (*model.Book, error) {
	return GetForUpdate(ctx, tq.Tx, bookID)
}

func (tq txQueryer) AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) (bool, error) {
	return AdjustAvailable(ctx, tq.Tx, bookID, delta)
}
