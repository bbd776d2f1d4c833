// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fixture prepares an in-memory library for the use cases and
// REST tests. It creates a memdb store with one user per role and
// provides helpers for adding books and acting as a given user.
package fixture

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/db/memdb"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/identityuc"
	"github.com/stretchr/testify/require"
)

// Library holds an in-memory store, its repositories, and the
// identity use case which resolves the fixture users.
type Library struct {
	Store    *memdb.Store
	Pool     *memdb.Pool
	Users    *memdb.Users
	Books    *memdb.Books
	Loans    *memdb.Loans
	Identity *identityuc.UseCase

	Admin     model.User
	Librarian model.User
	Manager   model.User
	Teacher   model.User
	Student   model.User
	Parent    model.User
}

// New creates a Library and inserts its users.
func New(t testing.TB) *Library {
	t.Helper()
	s := memdb.New()
	lib := &Library{
		Store: s,
		Pool:  memdb.NewPool(s),
		Users: memdb.NewUsers(),
		Books: memdb.NewBooks(),
		Loans: memdb.NewLoans(),

		Admin:     user("Ada", model.RoleAdmin),
		Librarian: user("Lena", model.RoleLibrarian),
		Manager:   user("Max", model.RoleManager),
		Teacher:   user("Tara", model.RoleTeacher),
		Student:   user("Sam", model.RoleStudent),
		Parent:    user("Pat", model.RoleParent),
	}
	lib.Identity = identityuc.New(lib.Pool, lib.Users)
	lib.tx(t, func(ctx context.Context, tx repo.Tx) error {
		uq := lib.Users.Tx(tx)
		for _, u := range []*model.User{
			&lib.Admin, &lib.Librarian, &lib.Manager,
			&lib.Teacher, &lib.Student, &lib.Parent,
		} {
			if err := uq.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	return lib
}

func user(name string, r model.Role) model.User {
	return model.User{ID: uuid.New(), Name: name, Role: r}
}

// As returns a context which carries u as the authenticated subject.
func (lib *Library) As(u model.User) context.Context {
	return auth.WithSubject(context.Background(), u.ID)
}

// AddBook inserts a book with the given copy counters directly into
// the store, bypassing the catalog use case.
func (lib *Library) AddBook(
	t testing.TB, title string, total, available int,
) model.Book {
	t.Helper()
	b := model.Book{
		ID:              uuid.New(),
		Title:           title,
		Author:          "Author of " + title,
		Category:        "General",
		CopiesTotal:     total,
		CopiesAvailable: available,
		AddedBy:         lib.Admin.ID,
	}
	lib.tx(t, func(ctx context.Context, tx repo.Tx) error {
		return lib.Books.Tx(tx).Create(ctx, &b)
	})
	return b
}

// Book fetches the current state of the bookID book.
func (lib *Library) Book(t testing.TB, bookID uuid.UUID) *model.Book {
	t.Helper()
	var b *model.Book
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) (err error) {
		b, err = lib.Books.Conn(c).Get(ctx, bookID)
		return err
	})
	require.NoError(t, err)
	return b
}

// Loan fetches the current state of the loanID loan.
func (lib *Library) Loan(t testing.TB, loanID uuid.UUID) *model.Loan {
	t.Helper()
	var l *model.Loan
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) (err error) {
		l, err = lib.Loans.Conn(c).Get(ctx, loanID)
		return err
	})
	require.NoError(t, err)
	return l
}

// LoansOf lists all loans of borrowerID, bypassing authorization.
func (lib *Library) LoansOf(t testing.TB, borrowerID uuid.UUID) []model.Loan {
	t.Helper()
	var ll []model.Loan
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) (err error) {
		ll, err = lib.Loans.Conn(c).ListByBorrower(ctx, borrowerID)
		return err
	})
	require.NoError(t, err)
	return ll
}

func (lib *Library) tx(t testing.TB, f repo.TxHandler) {
	t.Helper()
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) error {
		return c.Tx(ctx, f)
	})
	require.NoError(t, err)
}
