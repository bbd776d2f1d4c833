// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrp implements the repo.Loans interface for the
// PostgreSQL database. Entity queries use GORM, while the reports
// (active loans with their book and borrower details and the loans
// counters) are built as SQL statements using goqu.
package loansrp

import (
	"context"
	"time"

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

func (loans *Repo) Conn(c repo.Conn) repo.LoansConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	return Get(ctx, cq.Conn, loanID)
}

func (cq connQueryer) FindActive(ctx context.Context, bookID, borrowerID uuid.UUID) (*model.Loan, error) {
	return FindActive(ctx, cq.Conn, bookID, borrowerID)
}

func (cq connQueryer) ListActive(ctx context.Context) ([]model.ActiveLoan, error) {
	return ListActive(ctx, cq.Conn)
}

func (cq connQueryer) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error) {
	return ListByBorrower(ctx, cq.Conn, borrowerID)
}

func (cq connQueryer) CountActive(ctx context.Context, now time.Time) (int64, int64, error) {
	return CountActive(ctx, cq.Conn, now)
}

type txQueryer struct {
	*postgres.Tx
}

func (loans *Repo) Tx(tx repo.Tx) repo.LoansTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	return Get(ctx, tq.Tx, loanID)
}

func (tq txQueryer) FindActive(ctx context.Context, bookID, borrowerID uuid.UUID) (*model.Loan, error) {
	return FindActive(ctx, tq.Tx, bookID, borrowerID)
}

func (tq txQueryer) ListActive(ctx context.Context) ([]model.ActiveLoan, error) {
	return ListActive(ctx, tq.Tx)
}

func (tq txQueryer) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error) {
	return ListByBorrower(ctx, tq.Tx, borrowerID)
}

func (tq txQueryer) CountActive(ctx context.Context, now time.Time) (int64, int64, error) {
	return CountActive(ctx, tq.Tx, now)
}

func (tq txQueryer) Create(ctx context.Context, l *model.Loan) error {
	return Create(ctx, tq.Tx, l)
}

func (tq txQueryer) GetForUpdate(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	return GetForUpdate(ctx, tq.Tx, loanID)
}

func (tq txQueryer) MarkReturned(ctx context.Context, loanID uuid.UUID, at time.Time, notes string) (*model.Loan, error) {
	return MarkReturned(ctx, tq.Tx, loanID, at, notes)
}
