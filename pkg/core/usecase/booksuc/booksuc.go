// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksuc contains the books UseCase which manages the library
// catalog. Four use cases are supported:
//  1. Listing (and searching) books,
//  2. Getting one book,
//  3. Adding a book, and
//  4. Updating a book partially.
//
// Adding and updating books are restricted to the staff roles.
// The copy counters of a book are maintained by the circulationuc
// package, however, Update may override them manually.
package booksuc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// UseCase represents the books use case. It holds a database
// connection pool, the books repository, and an authorizer which
// resolves the caller of each operation.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
	authz   auth.Authorizer

	now func() time.Time
}

// New instantiates a books use case.
func New(
	p repo.Pool, b repo.Books, a auth.Authorizer, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, booksrp: b, authz: a}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// List returns the books which match q. An empty result is not an
// error. Any known role may list books.
func (books *UseCase) List(
	ctx context.Context, q model.BookQuery,
) (bb []model.Book, err error) {
	if _, err = books.authz.Require(ctx, model.AnyRole); err != nil {
		return nil, err
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bb, err = books.booksrp.Conn(c).List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bb, nil
}

// Get returns the bookID book or a cerr.NotFound error.
func (books *UseCase) Get(
	ctx context.Context, bookID uuid.UUID,
) (b *model.Book, err error) {
	if _, err = books.authz.Require(ctx, model.AnyRole); err != nil {
		return nil, err
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err = books.booksrp.Conn(c).Get(ctx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Add creates a new book and returns its ID. All of its copies are
// available initially and the caller is recorded as its creator.
func (books *UseCase) Add(
	ctx context.Context, nb *model.NewBook,
) (uuid.UUID, error) {
	caller, err := books.authz.Require(ctx, model.StaffRoles)
	if err != nil {
		return uuid.Nil, err
	}
	if err = nb.Validate(); err != nil {
		return uuid.Nil, cerr.BadRequest(err)
	}
	b := &model.Book{
		ID:              uuid.New(),
		Title:           nb.Title,
		Author:          nb.Author,
		ISBN:            nb.ISBN,
		Category:        nb.Category,
		CopiesTotal:     nb.CopiesTotal,
		CopiesAvailable: nb.CopiesTotal,
		Description:     nb.Description,
		Location:        nb.Location,
		CoverURL:        nb.CoverURL,
		AddedBy:         caller.ID,
		CreatedAt:       books.now(),
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return books.booksrp.Conn(c).Create(ctx, b)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating book: %w", err)
	}
	log.Info(
		ctx, "book added",
		log.ID("book", b.ID),
		log.ID("by", caller.ID),
		slog.Int("copies", b.CopiesTotal),
	)
	return b.ID, nil
}

// Update patches the bookID book and returns its updated version.
//
// Update is an administrative override for the copy counters: the
// CopiesTotal and CopiesAvailable fields are stored as given and are
// not checked against the active loans of the book. Such overrides
// are logged with warning level.
func (books *UseCase) Update(
	ctx context.Context, bookID uuid.UUID, p *model.BookPatch,
) (b *model.Book, err error) {
	caller, err := books.authz.Require(ctx, model.StaffRoles)
	if err != nil {
		return nil, err
	}
	if err = p.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err = books.booksrp.Conn(c).Patch(ctx, bookID, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p.OverridesCounters() {
		log.Warn(
			ctx, "book copy counters overridden",
			log.ID("book", bookID),
			log.ID("by", caller.ID),
			slog.Int("total", b.CopiesTotal),
			slog.Int("available", b.CopiesAvailable),
		)
	}
	return b, nil
}
