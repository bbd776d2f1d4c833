// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gLoan struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	BookID     uuid.UUID `gorm:"type:uuid"`
	BorrowerID uuid.UUID `gorm:"type:uuid"`
	BorrowDate time.Time
	DueDate    time.Time
	Status     string
	ReturnDate *time.Time
	Notes      string
}

func (gl *gLoan) TableName() string {
	return "loans"
}

func (gl *gLoan) Model() (*model.Loan, error) {
	s, err := model.ParseLoanStatus(gl.Status)
	if err != nil {
		return nil, fmt.Errorf("loan %s status %q: %w", gl.ID, gl.Status, err)
	}
	return &model.Loan{
		ID:         gl.ID,
		BookID:     gl.BookID,
		BorrowerID: gl.BorrowerID,
		BorrowDate: gl.BorrowDate,
		DueDate:    gl.DueDate,
		Status:     s,
		ReturnDate: gl.ReturnDate,
		Notes:      gl.Notes,
	}, nil
}

func models(gls []gLoan) ([]model.Loan, error) {
	ll := make([]model.Loan, 0, len(gls))
	for i := range gls {
		l, err := gls[i].Model()
		if err != nil {
			return nil, err
		}
		ll = append(ll, *l)
	}
	return ll, nil
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, loanID uuid.UUID,
) (*model.Loan, error) {
	return get(q.GORM(ctx), loanID)
}

// GetForUpdate locks the fetched row (SELECT ... FOR UPDATE), so it
// must be called within a transaction.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, loanID uuid.UUID,
) (*model.Loan, error) {
	gdb := tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return get(gdb, loanID)
}

func get(gdb *gorm.DB, loanID uuid.UUID) (*model.Loan, error) {
	var gls []gLoan
	err := gdb.Where("id = ?", loanID).Limit(1).Find(&gls).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gls) == 0 {
		return nil, cerr.NotFound(model.ErrLoanNotFound)
	}
	return gls[0].Model()
}

func FindActive[Q postgres.Queryer](
	ctx context.Context, q Q, bookID, borrowerID uuid.UUID,
) (*model.Loan, error) {
	var gls []gLoan
	err := q.GORM(ctx).Where(
		"book_id = ? AND borrower_id = ? AND status = ?",
		bookID, borrowerID, model.LoanStatusActive.String(),
	).Limit(1).Find(&gls).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gls) == 0 {
		return nil, nil
	}
	return gls[0].Model()
}

func ListByBorrower[Q postgres.Queryer](
	ctx context.Context, q Q, borrowerID uuid.UUID,
) ([]model.Loan, error) {
	var gls []gLoan
	err := q.GORM(ctx).Where("borrower_id = ?", borrowerID).Order(
		"borrow_date DESC, id",
	).Find(&gls).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gls)
}

// Create inserts l. The loans_one_active_idx partial unique index
// rejects a second active loan of one borrower for the same book,
// which is reported as a cerr.Conflict error.
func Create(ctx context.Context, tx *postgres.Tx, l *model.Loan) error {
	gl := &gLoan{
		ID:         l.ID,
		BookID:     l.BookID,
		BorrowerID: l.BorrowerID,
		BorrowDate: l.BorrowDate,
		DueDate:    l.DueDate,
		Status:     l.Status.String(),
		ReturnDate: l.ReturnDate,
		Notes:      l.Notes,
	}
	err := tx.GORM(ctx).Create(gl).Error
	switch {
	case postgres.HasCode(err, postgres.UniqueViolation):
		return cerr.Conflict(model.ErrAlreadyCheckedOut)
	case err != nil:
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func MarkReturned(
	ctx context.Context,
	tx *postgres.Tx,
	loanID uuid.UUID,
	at time.Time,
	notes string,
) (*model.Loan, error) {
	var gl gLoan
	gdb := tx.GORM(ctx).Model(&gl).Clauses(clause.Returning{}).Where(
		"id = ?", loanID,
	).Updates(map[string]any{
		"status":      model.LoanStatusReturned.String(),
		"return_date": at,
		"notes":       notes,
	})
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := gdb.RowsAffected; n != 1 {
		return nil, cerr.NotFound(fmt.Errorf(
			"expected one row, but got %d: %w", n, model.ErrLoanNotFound,
		))
	}
	return gl.Model()
}
