// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// These errors describe the loan related business rule violations.
// They are wrapped by the cerr package constructors in the use cases
// layer, so they may be reported with a suitable error kind.
var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrAlreadyCheckedOut = errors.New("already checked out")
	ErrLoanNotActive     = errors.New("loan not active")
)

// LoanStatus specifies the loan status enum. A loan is created in the
// LoanStatusActive state and may transition to LoanStatusReturned only
// once. Although this enum is numeric, it is (de)serialized as a string
// both in the database and in the REST APIs.
type LoanStatus int

// Valid values for the LoanStatus enum.
const (
	LoanStatusInvalid LoanStatus = iota // zero value is invalid

	LoanStatusActive   // copy is with the borrower
	LoanStatusReturned // terminal state
)

// ErrUnknownLoanStatus indicates that a given string may not be parsed
// as a known loan status.
var ErrUnknownLoanStatus = errors.New("unknown loan status")

// LoanStatusError indicates an invalid numeric loan status.
type LoanStatusError int

// Error implements the error interface.
func (e LoanStatusError) Error() string {
	return fmt.Sprintf("invalid loan status: %d", e)
}

// Validate returns nil if LoanStatus value is valid. For invalid
// values, an instance of the LoanStatusError will be returned.
func (s LoanStatus) Validate() error {
	switch s {
	case LoanStatusActive, LoanStatusReturned:
		return nil
	default:
		return LoanStatusError(s)
	}
}

// String converts the LoanStatus enum to a string.
// Invalid loan status causes a panic.
func (s LoanStatus) String() string {
	switch s {
	case LoanStatusActive:
		return "active"
	case LoanStatusReturned:
		return "returned"
	default:
		panic(LoanStatusError(s))
	}
}

// ParseLoanStatus parses the given string and returns a LoanStatus.
// For invalid strings, LoanStatusInvalid and ErrUnknownLoanStatus
// will be returned.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch s {
	case "active":
		return LoanStatusActive, nil
	case "returned":
		return LoanStatusReturned, nil
	default:
		return LoanStatusInvalid, ErrUnknownLoanStatus
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s LoanStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *LoanStatus) UnmarshalText(text []byte) error {
	ls, err := ParseLoanStatus(string(text))
	if err != nil {
		return err
	}
	*s = ls
	return nil
}

// Loan records one borrowing of a book copy by a borrower.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowerID uuid.UUID  `json:"borrower_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	Status     LoanStatus `json:"status"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Active reports whether the copy is still with its borrower.
func (l *Loan) Active() bool {
	return l.Status == LoanStatusActive
}

// Overdue reports whether l is active and its due date is strictly
// before now.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Active() && l.DueDate.Before(now)
}

// LogValue implements slog.LogValuer. Notes are omitted since they
// may be long or personal.
func (l *Loan) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", l.ID.String()),
		slog.String("book", l.BookID.String()),
		slog.String("borrower", l.BorrowerID.String()),
		slog.Time("due", l.DueDate),
	}
	if l.Status.Validate() == nil {
		attrs = append(attrs, slog.String("status", l.Status.String()))
	}
	return slog.GroupValue(attrs...)
}

// ActiveLoan is a read model which enriches an active loan with the
// book title and the borrower name and role. It is computed by joining
// the loans with books and users whenever it is queried and is never
// persisted. Missing books or users leave their fields empty.
type ActiveLoan struct {
	Loan
	BookTitle    string `json:"book_title"`
	BorrowerName string `json:"borrower_name"`
	BorrowerRole string `json:"borrower_role"`
	Overdue      bool   `json:"overdue"`
}

// Stats aggregates the catalog and loans counters.
type Stats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
	ActiveLoans     int64 `json:"active_loans"`
	OverdueLoans    int64 `json:"overdue_loans"`
}

// CheckoutRequest contains the checkout parameters. A zero DueDate
// asks for the default loan period.
type CheckoutRequest struct {
	BookID     uuid.UUID
	BorrowerID uuid.UUID
	DueDate    time.Time
	Notes      string
}

// AppendNote returns notes followed by a condition annotation.
// An empty (or blank) condition leaves notes unchanged.
func AppendNote(notes, condition string) string {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return notes
	}
	annotation := "Condition: " + condition
	if notes == "" {
		return annotation
	}
	return notes + "\n" + annotation
}
