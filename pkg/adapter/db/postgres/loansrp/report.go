// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the dialect
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/model"
)

// The read models are built as prepared SQL statements with goqu and
// are executed through the repo.Queryer interface. Their $n parameters
// are passed to the driver as they are.
var dialect = goqu.Dialect("postgres")

func activeLoansQuery() (string, []any, error) {
	return dialect.From(goqu.T("loans").As("l")).LeftJoin(
		goqu.T("books").As("b"),
		goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id"))),
	).LeftJoin(
		goqu.T("users").As("u"),
		goqu.On(goqu.I("u.id").Eq(goqu.I("l.borrower_id"))),
	).Select(
		"l.id", "l.book_id", "l.borrower_id",
		"l.borrow_date", "l.due_date", "l.return_date", "l.notes",
		goqu.COALESCE(goqu.I("b.title"), "").As("book_title"),
		goqu.COALESCE(goqu.I("u.name"), "").As("borrower_name"),
		goqu.COALESCE(goqu.I("u.role"), "").As("borrower_role"),
	).Where(
		goqu.I("l.status").Eq(model.LoanStatusActive.String()),
	).Order(
		goqu.I("l.due_date").Asc(), goqu.I("l.id").Asc(),
	).Prepared(true).ToSQL()
}

// ListActive returns the active loans joined with their books and
// borrowers. Loans of missing books or users are kept with empty
// enrichment fields.
func ListActive[Q postgres.Queryer](
	ctx context.Context, q Q,
) ([]model.ActiveLoan, error) {
	query, args, err := activeLoansQuery()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	al := []model.ActiveLoan{}
	for rows.Next() {
		var (
			a  model.ActiveLoan
			rd sql.NullTime
		)
		err = rows.Scan(
			&a.ID, &a.BookID, &a.BorrowerID,
			&a.BorrowDate, &a.DueDate, &rd, &a.Notes,
			&a.BookTitle, &a.BorrowerName, &a.BorrowerRole,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if rd.Valid {
			a.ReturnDate = &rd.Time
		}
		a.Status = model.LoanStatusActive
		al = append(al, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return al, nil
}

func countActiveQuery(now time.Time) (string, []any, error) {
	return dialect.From("loans").Select(
		goqu.COUNT(goqu.Star()).As("active"),
		goqu.L("count(*) FILTER (WHERE due_date < ?)", now).As("overdue"),
	).Where(
		goqu.C("status").Eq(model.LoanStatusActive.String()),
	).Prepared(true).ToSQL()
}

// CountActive counts the active loans and the overdue ones among them.
func CountActive[Q postgres.Queryer](
	ctx context.Context, q Q, now time.Time,
) (active, overdue int64, err error) {
	query, args, err := countActiveQuery(now)
	if err != nil {
		return 0, 0, fmt.Errorf("building query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, 0, fmt.Errorf("no rows: %w", rows.Err())
	}
	if err = rows.Scan(&active, &overdue); err != nil {
		return 0, 0, fmt.Errorf("scanning row: %w", err)
	}
	return active, overdue, rows.Err()
}
