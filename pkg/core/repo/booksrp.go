// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
)

// BooksConnQueryer runs the catalog queries on a connection.
type BooksConnQueryer interface {
	BooksQueryer
}

// BooksTxQueryer runs the catalog queries within a transaction.
// The counter manipulation methods are only offered here, so they
// may be combined with the loans changes atomically.
type BooksTxQueryer interface {
	BooksQueryer

	// GetForUpdate fetches the bookID book and locks it until the
	// end of the current transaction, so concurrent checkouts and
	// returns of the same book are serialized.
	GetForUpdate(ctx context.Context, bookID uuid.UUID) (*model.Book, error)

	// AdjustAvailable adds delta to the copies available counter of
	// the bookID book. The found return value is false if there was
	// no such book (which is not reported as an error).
	AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) (found bool, err error)
}

// BooksQueryer contains the catalog queries which are common between
// connections and transactions. Missing books are reported by a
// cerr.NotFound error which wraps model.ErrBookNotFound.
type BooksQueryer interface {
	List(ctx context.Context, q model.BookQuery) ([]model.Book, error)
	Get(ctx context.Context, bookID uuid.UUID) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Patch(ctx context.Context, bookID uuid.UUID, p *model.BookPatch) (*model.Book, error)

	// Totals returns the number of books, and the sums of their
	// total and available copies.
	Totals(ctx context.Context) (books, copies, available int64, err error)
}

// Books is the catalog repository.
type Books interface {
	Conn(Conn) BooksConnQueryer
	Tx(Tx) BooksTxQueryer
}
