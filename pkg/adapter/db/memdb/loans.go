// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// Loans implements the repo.Loans interface.
type Loans struct {
}

// NewLoans instantiates the loans repository.
func NewLoans() *Loans {
	return &Loans{}
}

type loansQueryer struct {
	queryer
}

func (loans *Loans) Conn(c repo.Conn) repo.LoansConnQueryer {
	return loansQueryer{connQueryer(c)}
}

func (loans *Loans) Tx(tx repo.Tx) repo.LoansTxQueryer {
	return loansQueryer{txQueryer(tx)}
}

func getLoan(s *Store, loanID uuid.UUID) (*model.Loan, error) {
	l, ok := s.loans[loanID]
	if !ok {
		return nil, cerr.NotFound(model.ErrLoanNotFound)
	}
	return &l, nil
}

func findActive(s *Store, bookID, borrowerID uuid.UUID) *model.Loan {
	for _, l := range s.loans {
		if l.Active() && l.BookID == bookID && l.BorrowerID == borrowerID {
			return &l
		}
	}
	return nil
}

func (q loansQueryer) Get(
	_ context.Context, loanID uuid.UUID,
) (l *model.Loan, err error) {
	err = q.run(func(s *Store) error {
		l, err = getLoan(s, loanID)
		return err
	})
	return l, err
}

func (q loansQueryer) GetForUpdate(
	ctx context.Context, loanID uuid.UUID,
) (*model.Loan, error) {
	return q.Get(ctx, loanID)
}

func (q loansQueryer) FindActive(
	_ context.Context, bookID, borrowerID uuid.UUID,
) (l *model.Loan, err error) {
	err = q.run(func(s *Store) error {
		l = findActive(s, bookID, borrowerID)
		return nil
	})
	return l, err
}

func (q loansQueryer) ListActive(
	context.Context,
) (al []model.ActiveLoan, err error) {
	err = q.run(func(s *Store) error {
		al = []model.ActiveLoan{}
		for _, l := range s.loans {
			if !l.Active() {
				continue
			}
			a := model.ActiveLoan{Loan: l}
			if b, ok := s.books[l.BookID]; ok {
				a.BookTitle = b.Title
			}
			if u, ok := s.users[l.BorrowerID]; ok {
				a.BorrowerName = u.Name
				a.BorrowerRole = string(u.Role)
			}
			al = append(al, a)
		}
		return nil
	})
	sort.Slice(al, func(i, j int) bool {
		if !al[i].DueDate.Equal(al[j].DueDate) {
			return al[i].DueDate.Before(al[j].DueDate)
		}
		return al[i].ID.String() < al[j].ID.String()
	})
	return al, err
}

func (q loansQueryer) ListByBorrower(
	_ context.Context, borrowerID uuid.UUID,
) (ll []model.Loan, err error) {
	err = q.run(func(s *Store) error {
		ll = []model.Loan{}
		for _, l := range s.loans {
			if l.BorrowerID == borrowerID {
				ll = append(ll, l)
			}
		}
		return nil
	})
	sort.Slice(ll, func(i, j int) bool {
		if !ll[i].BorrowDate.Equal(ll[j].BorrowDate) {
			return ll[i].BorrowDate.After(ll[j].BorrowDate)
		}
		return ll[i].ID.String() < ll[j].ID.String()
	})
	return ll, err
}

func (q loansQueryer) CountActive(
	_ context.Context, now time.Time,
) (active, overdue int64, err error) {
	err = q.run(func(s *Store) error {
		for _, l := range s.loans {
			if !l.Active() {
				continue
			}
			active++
			if l.Overdue(now) {
				overdue++
			}
		}
		return nil
	})
	return
}

func (q loansQueryer) Create(_ context.Context, l *model.Loan) error {
	return q.run(func(s *Store) error {
		if _, ok := s.loans[l.ID]; ok {
			return cerr.Conflict(fmt.Errorf("loan %s exists", l.ID))
		}
		if l.Active() && findActive(s, l.BookID, l.BorrowerID) != nil {
			return cerr.Conflict(model.ErrAlreadyCheckedOut)
		}
		s.loans[l.ID] = *l
		return nil
	})
}

func (q loansQueryer) MarkReturned(
	_ context.Context, loanID uuid.UUID, at time.Time, notes string,
) (l *model.Loan, err error) {
	err = q.run(func(s *Store) error {
		l, err = getLoan(s, loanID)
		if err != nil {
			return err
		}
		l.Status = model.LoanStatusReturned
		l.ReturnDate = &at
		l.Notes = notes
		s.loans[loanID] = *l
		return nil
	})
	return l, err
}
