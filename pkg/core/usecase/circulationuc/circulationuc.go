// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package circulationuc contains the circulation UseCase which lends
// book copies out (Checkout) and takes them back (Return).
// Each operation checks its business rules and changes both of the
// loans ledger and the book copy counter in one transaction, while
// the book (or loan) row is locked. Therefore, the available copies
// of a book always equal its total copies minus its active loans,
// no matter how checkouts and returns of the same book interleave.
package circulationuc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// UseCase represents the circulation use case. It holds a database
// connection pool, the books and loans repositories, an authorizer,
// and the circulation specific settings.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
	loansrp repo.Loans
	authz   auth.Authorizer

	now               func() time.Time
	defaultLoanPeriod time.Duration
}

// New instantiates a circulation use case.
// Required parameters are passed individually, while optional ones
// are passed as functional options.
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
	// now, deal with defaults
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.defaultLoanPeriod == 0 {
		uc.defaultLoanPeriod = 14 * 24 * time.Hour
	}
	return uc, nil
}

// Checkout lends a copy of the req.BookID book to req.BorrowerID and
// returns the new loan ID. The checks are performed in this order:
//  1. caller must be a staff member (cerr.Authorization),
//  2. the book must exist (cerr.NotFound),
//  3. at least one copy must be available (cerr.Exhausted),
//  4. the borrower may not hold an active loan of the same book
//     (cerr.Conflict).
//
// A zero req.DueDate is replaced by now plus the default loan period,
// otherwise, it must be after now (cerr.BadRequest).
func (circ *UseCase) Checkout(
	ctx context.Context, req *model.CheckoutRequest,
) (uuid.UUID, error) {
	caller, err := circ.authz.Require(ctx, model.StaffRoles)
	if err != nil {
		return uuid.Nil, err
	}
	now := circ.now()
	due := req.DueDate
	if due.IsZero() {
		due = now.Add(circ.defaultLoanPeriod)
	} else if !due.After(now) {
		return uuid.Nil, cerr.BadRequest(fmt.Errorf(
			"due date %s is not after the borrow date %s",
			due.Format(time.RFC3339), now.Format(time.RFC3339),
		))
	}
	l := &model.Loan{
		ID:         uuid.New(),
		BookID:     req.BookID,
		BorrowerID: req.BorrowerID,
		BorrowDate: now,
		DueDate:    due,
		Status:     model.LoanStatusActive,
		Notes:      req.Notes,
	}
	err = circ.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return circ.checkout(ctx, tx, l)
		})
	})
	if err != nil {
		return uuid.Nil, err
	}
	log.Info(
		ctx, "loan checked out",
		log.Valuer("loan", l),
		log.ID("by", caller.ID),
	)
	return l.ID, nil
}

func (circ *UseCase) checkout(
	ctx context.Context, tx repo.Tx, l *model.Loan,
) error {
	bq := circ.booksrp.Tx(tx)
	lq := circ.loansrp.Tx(tx)
	b, err := bq.GetForUpdate(ctx, l.BookID)
	if err != nil {
		return err
	}
	if b.CopiesAvailable < 1 {
		return cerr.Exhausted(model.ErrNoCopiesAvailable)
	}
	active, err := lq.FindActive(ctx, l.BookID, l.BorrowerID)
	if err != nil {
		return fmt.Errorf("finding active loan: %w", err)
	}
	if active != nil {
		return cerr.Conflict(model.ErrAlreadyCheckedOut)
	}
	if err = lq.Create(ctx, l); err != nil {
		return err
	}
	found, err := bq.AdjustAvailable(ctx, l.BookID, -1)
	switch {
	case err != nil:
		return fmt.Errorf("decrementing available copies: %w", err)
	case !found:
		return cerr.NotFound(model.ErrBookNotFound)
	}
	return nil
}

// Return closes the loanID loan and puts its copy back. The checks are
// performed in this order:
//  1. caller must be a staff member (cerr.Authorization),
//  2. the loan must exist (cerr.NotFound),
//  3. the loan must be active (cerr.InvalidState).
//
// Return is not idempotent: returning a loan twice fails the second
// time without changing the copy counter again. The condition note,
// if any, is appended to the loan notes. If the loan book does not
// exist anymore, the loan is closed anyway and no counter is changed.
func (circ *UseCase) Return(
	ctx context.Context, loanID uuid.UUID, condition string,
) (l *model.Loan, err error) {
	caller, err := circ.authz.Require(ctx, model.StaffRoles)
	if err != nil {
		return nil, err
	}
	now := circ.now()
	err = circ.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			l, err = circ.giveBack(ctx, tx, loanID, now, condition)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "loan returned",
		log.Valuer("loan", l),
		log.ID("by", caller.ID),
	)
	return l, nil
}

func (circ *UseCase) giveBack(
	ctx context.Context,
	tx repo.Tx,
	loanID uuid.UUID,
	now time.Time,
	condition string,
) (*model.Loan, error) {
	bq := circ.booksrp.Tx(tx)
	lq := circ.loansrp.Tx(tx)
	l, err := lq.GetForUpdate(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.Active() {
		return nil, cerr.InvalidState(model.ErrLoanNotActive)
	}
	notes := model.AppendNote(l.Notes, condition)
	l, err = lq.MarkReturned(ctx, loanID, now, notes)
	if err != nil {
		return nil, fmt.Errorf("marking loan as returned: %w", err)
	}
	found, err := bq.AdjustAvailable(ctx, l.BookID, 1)
	if err != nil {
		return nil, fmt.Errorf("incrementing available copies: %w", err)
	}
	if !found {
		log.Debug(
			ctx, "returned loan refers to a missing book",
			log.ID("loan", l.ID),
			log.ID("book", l.BookID),
		)
	}
	return l, nil
}
