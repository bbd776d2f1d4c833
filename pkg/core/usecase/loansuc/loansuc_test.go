// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/internal/test/fixture"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/loansuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*fixture.Library, *loansuc.UseCase) {
	lib := fixture.New(t)
	uc, err := loansuc.New(
		lib.Pool, lib.Books, lib.Loans, lib.Identity,
		loansuc.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return lib, uc
}

// lend records an active loan directly, so the ledger may be tested
// independent of the circulation use case.
func lend(
	t *testing.T, lib *fixture.Library, b *model.Book, u model.User,
	borrowed, due time.Time,
) model.Loan {
	t.Helper()
	l := model.Loan{
		ID:         uuid.New(),
		BookID:     b.ID,
		BorrowerID: u.ID,
		BorrowDate: borrowed,
		DueDate:    due,
		Status:     model.LoanStatusActive,
	}
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if err := lib.Loans.Tx(tx).Create(ctx, &l); err != nil {
				return err
			}
			_, err := lib.Books.Tx(tx).AdjustAvailable(ctx, b.ID, -1)
			return err
		})
	})
	require.NoError(t, err)
	return l
}

func TestStats(t *testing.T) {
	lib, uc := newUseCase(t)
	b1 := lib.AddBook(t, "One", 3, 3)
	b2 := lib.AddBook(t, "Two", 2, 2)
	lend(t, lib, &b1, lib.Student, now.Add(-72*time.Hour), now.Add(-time.Hour))
	lend(t, lib, &b1, lib.Teacher, now.Add(-time.Hour), now)
	lend(t, lib, &b2, lib.Student, now, now.Add(time.Hour))

	s, err := uc.Stats(lib.As(lib.Student))
	require.NoError(t, err)
	assert.Equal(t, model.Stats{
		TotalBooks:      2,
		TotalCopies:     5,
		AvailableCopies: 2,
		ActiveLoans:     3,
		OverdueLoans:    1, // a due date equal to now is not overdue
	}, *s)
}

func TestListActive(t *testing.T) {
	lib, uc := newUseCase(t)
	b := lib.AddBook(t, "Shared", 3, 3)
	late := lend(t, lib, &b, lib.Parent, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	soon := lend(t, lib, &b, lib.Student, now, now.Add(24*time.Hour))
	ghost := model.User{ID: uuid.New(), Name: "Gone", Role: model.RoleStudent}
	orphan := lend(t, lib, &b, ghost, now, now.Add(48*time.Hour))

	al, err := uc.ListActive(lib.As(lib.Teacher))
	require.NoError(t, err)
	require.Len(t, al, 3)
	assert.Equal(t, late.ID, al[0].ID)
	assert.True(t, al[0].Overdue)
	assert.Equal(t, "Shared", al[0].BookTitle)
	assert.Equal(t, lib.Parent.Name, al[0].BorrowerName)
	assert.Equal(t, string(model.RoleParent), al[0].BorrowerRole)
	assert.Equal(t, soon.ID, al[1].ID)
	assert.False(t, al[1].Overdue)
	assert.Equal(t, orphan.ID, al[2].ID)
	assert.Empty(t, al[2].BorrowerName)
	assert.Empty(t, al[2].BorrowerRole)

	_, err = uc.ListActive(context.Background())
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)
}

func TestFindActiveLoan(t *testing.T) {
	lib, uc := newUseCase(t)
	b := lib.AddBook(t, "Findable", 1, 1)
	l := lend(t, lib, &b, lib.Student, now, now.Add(time.Hour))

	got, err := uc.FindActiveLoan(lib.As(lib.Parent), b.ID, lib.Student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, l.ID, got.ID)

	got, err = uc.FindActiveLoan(lib.As(lib.Parent), b.ID, lib.Teacher.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHistory(t *testing.T) {
	lib, uc := newUseCase(t)
	b := lib.AddBook(t, "Read Often", 5, 5)
	older := lend(t, lib, &b, lib.Student, now.Add(-96*time.Hour), now.Add(time.Hour))
	c := lib.AddBook(t, "Read Once", 1, 1)
	newer := lend(t, lib, &c, lib.Student, now.Add(-time.Hour), now.Add(time.Hour))

	ll, err := uc.History(lib.As(lib.Student), lib.Student.ID)
	require.NoError(t, err)
	require.Len(t, ll, 2)
	assert.Equal(t, newer.ID, ll[0].ID)
	assert.Equal(t, older.ID, ll[1].ID)

	ll, err = uc.History(lib.As(lib.Librarian), lib.Student.ID)
	require.NoError(t, err)
	assert.Len(t, ll, 2)

	_, err = uc.History(lib.As(lib.Parent), lib.Student.ID)
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)

	ll, err = uc.History(lib.As(lib.Parent), lib.Parent.ID)
	require.NoError(t, err)
	assert.Empty(t, ll)
}
