// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansuc contains the loans UseCase which reads the loans
// ledger. It can find the active loan of a borrower for a book, list
// the active loans (joined with their books and borrowers), compute
// the library statistics, and list the loans history of a borrower.
// Loans are created and closed by the circulationuc package.
package loansuc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/identityuc"
)

// UseCase represents the loans use case.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
	loansrp repo.Loans
	authz   auth.Authorizer

	now func() time.Time
}

// New instantiates a loans use case.
func New(
	p repo.Pool,
	b repo.Books,
	l repo.Loans,
	a auth.Authorizer,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, booksrp: b, loansrp: l, authz: a}
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

// FindActiveLoan returns the active loan of borrowerID for the bookID
// book, or nil if the borrower has no such loan.
func (loans *UseCase) FindActiveLoan(
	ctx context.Context, bookID, borrowerID uuid.UUID,
) (l *model.Loan, err error) {
	if _, err = loans.authz.Require(ctx, model.AnyRole); err != nil {
		return nil, err
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		l, err = loans.loansrp.Conn(c).FindActive(ctx, bookID, borrowerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListActive returns all active loans, enriched by their book titles
// and borrowers names and roles. The Overdue flag of each item is
// computed against the current time.
func (loans *UseCase) ListActive(
	ctx context.Context,
) (al []model.ActiveLoan, err error) {
	if _, err = loans.authz.Require(ctx, model.AnyRole); err != nil {
		return nil, err
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		al, err = loans.loansrp.Conn(c).ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	now := loans.now()
	for i := range al {
		al[i].Overdue = al[i].Loan.Overdue(now)
	}
	return al, nil
}

// Stats computes the catalog and loans counters. A loan is overdue
// if it is active and its due date is strictly before now.
func (loans *UseCase) Stats(ctx context.Context) (*model.Stats, error) {
	if _, err := loans.authz.Require(ctx, model.AnyRole); err != nil {
		return nil, err
	}
	s := &model.Stats{}
	now := loans.now()
	err := loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (
		err error,
	) {
		s.TotalBooks, s.TotalCopies, s.AvailableCopies, err =
			loans.booksrp.Conn(c).Totals(ctx)
		if err != nil {
			return fmt.Errorf("books totals: %w", err)
		}
		s.ActiveLoans, s.OverdueLoans, err =
			loans.loansrp.Conn(c).CountActive(ctx, now)
		if err != nil {
			return fmt.Errorf("counting active loans: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// History lists all loans of borrowerID, newest first. Staff members
// may see the history of anyone, while other callers may only see
// their own history.
func (loans *UseCase) History(
	ctx context.Context, borrowerID uuid.UUID,
) (ll []model.Loan, err error) {
	caller, err := loans.authz.Require(ctx, model.AnyRole)
	if err != nil {
		return nil, err
	}
	if caller.ID != borrowerID {
		if err = identityuc.Check(caller, model.StaffRoles); err != nil {
			return nil, err
		}
	}
	err = loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ll, err = loans.loansrp.Conn(c).ListByBorrower(ctx, borrowerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ll, nil
}
