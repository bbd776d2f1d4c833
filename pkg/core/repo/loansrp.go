// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
)

// LoansConnQueryer runs the ledger read queries on a connection.
type LoansConnQueryer interface {
	LoansQueryer
}

// LoansTxQueryer runs the ledger queries within a transaction.
// Loans are only created or closed in transactions, next to the
// corresponding book counter changes.
type LoansTxQueryer interface {
	LoansQueryer

	// Create inserts l. A second active loan for the same book and
	// borrower is rejected with a cerr.Conflict error.
	Create(ctx context.Context, l *model.Loan) error

	// GetForUpdate fetches the loanID loan and locks it until the
	// end of the current transaction.
	GetForUpdate(ctx context.Context, loanID uuid.UUID) (*model.Loan, error)

	// MarkReturned closes the loanID loan, recording the return date
	// and replacing its notes.
	MarkReturned(ctx context.Context, loanID uuid.UUID, at time.Time, notes string) (*model.Loan, error)
}

// LoansQueryer contains the ledger read queries. Missing loans are
// reported by a cerr.NotFound error which wraps model.ErrLoanNotFound.
type LoansQueryer interface {
	Get(ctx context.Context, loanID uuid.UUID) (*model.Loan, error)

	// FindActive returns the active loan of the borrowerID for the
	// bookID book, or nil if there is none.
	FindActive(ctx context.Context, bookID, borrowerID uuid.UUID) (*model.Loan, error)

	// ListActive returns all active loans, enriched with their book
	// title and borrower name and role, ordered by their due dates.
	ListActive(ctx context.Context) ([]model.ActiveLoan, error)

	// ListByBorrower returns all loans of borrowerID, newest first.
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error)

	// CountActive counts the active loans and those among them which
	// their due date is strictly before now.
	CountActive(ctx context.Context, now time.Time) (active, overdue int64, err error)
}

// Loans is the loans ledger repository.
type Loans interface {
	Conn(Conn) LoansConnQueryer
	Tx(Tx) LoansTxQueryer
}
