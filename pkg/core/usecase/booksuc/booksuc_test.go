// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksuc_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/internal/test/fixture"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/usecase/booksuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 14, 8, 30, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*fixture.Library, *booksuc.UseCase) {
	lib := fixture.New(t)
	uc, err := booksuc.New(
		lib.Pool, lib.Books, lib.Identity,
		booksuc.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return lib, uc
}

func TestAddBook(t *testing.T) {
	lib, uc := newUseCase(t)
	isbn := "978-0-13-419044-0"
	id, err := uc.Add(lib.As(lib.Manager), &model.NewBook{
		Title:       "The Go Programming Language",
		Author:      "Alan Donovan",
		ISBN:        &isbn,
		Category:    "Computing",
		CopiesTotal: 4,
	})
	require.NoError(t, err)
	b := lib.Book(t, id)
	assert.Equal(t, 4, b.CopiesTotal)
	assert.Equal(t, 4, b.CopiesAvailable)
	assert.Equal(t, lib.Manager.ID, b.AddedBy)
	assert.True(t, b.CreatedAt.Equal(now))
	require.NotNil(t, b.ISBN)
	assert.Equal(t, isbn, *b.ISBN)
}

func TestAddBookRejections(t *testing.T) {
	lib, uc := newUseCase(t)
	nb := &model.NewBook{
		Title: "Matilda", Author: "Roald Dahl", Category: "Fiction",
		CopiesTotal: 1,
	}
	for _, u := range []model.User{lib.Teacher, lib.Student, lib.Parent} {
		_, err := uc.Add(lib.As(u), nb)
		assert.True(
			t, cerr.IsKind(err, cerr.KindAuthorization),
			"role %s: %v", u.Role, err,
		)
	}
	bad := "9780134190441"
	_, err := uc.Add(lib.As(lib.Librarian), &model.NewBook{
		Title: "Matilda", Author: "Roald Dahl", Category: "Fiction",
		ISBN: &bad,
	})
	assert.True(t, cerr.IsKind(err, cerr.KindBadRequest), "%v", err)
	assert.ErrorIs(t, err, model.ErrInvalidISBN)

	bb, err := uc.List(lib.As(lib.Student), model.BookQuery{})
	require.NoError(t, err)
	assert.Empty(t, bb)
}

func TestListAndGet(t *testing.T) {
	lib, uc := newUseCase(t)
	lib.AddBook(t, "Brave New World", 2, 2)
	hobbit := lib.AddBook(t, "The Hobbit", 1, 0)
	lib.AddBook(t, "Animal Farm", 3, 1)

	reader := lib.As(lib.Parent)
	bb, err := uc.List(reader, model.BookQuery{})
	require.NoError(t, err)
	require.Len(t, bb, 3)
	assert.Equal(t, "Animal Farm", bb[0].Title)
	assert.Equal(t, "Brave New World", bb[1].Title)
	assert.Equal(t, "The Hobbit", bb[2].Title)

	bb, err = uc.List(reader, model.BookQuery{Search: "HOBBIT"})
	require.NoError(t, err)
	require.Len(t, bb, 1)
	assert.Equal(t, hobbit.ID, bb[0].ID)

	b, err := uc.Get(reader, hobbit.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, b.CopiesAvailable)

	_, err = uc.Get(reader, uuid.New())
	assert.True(t, cerr.IsKind(err, cerr.KindNotFound), "%v", err)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	_, err = uc.List(lib.As(model.User{ID: uuid.New()}), model.BookQuery{})
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)
}

func TestUpdateOverridesCounters(t *testing.T) {
	lib, uc := newUseCase(t)
	b := lib.AddBook(t, "Atlas", 2, 1)
	total, avail := 5, 5
	title := "World Atlas"
	got, err := uc.Update(lib.As(lib.Admin), b.ID, &model.BookPatch{
		Title:           &title,
		CopiesTotal:     &total,
		CopiesAvailable: &avail,
	})
	require.NoError(t, err)
	assert.Equal(t, "World Atlas", got.Title)
	assert.Equal(t, 5, got.CopiesTotal)
	assert.Equal(t, 5, got.CopiesAvailable)
	assert.Equal(t, *got, *lib.Book(t, b.ID))

	_, err = uc.Update(lib.As(lib.Teacher), b.ID, &model.BookPatch{
		Title: &title,
	})
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)

	neg := -3
	_, err = uc.Update(lib.As(lib.Admin), b.ID, &model.BookPatch{
		CopiesAvailable: &neg,
	})
	assert.True(t, cerr.IsKind(err, cerr.KindBadRequest), "%v", err)

	_, err = uc.Update(lib.As(lib.Admin), uuid.New(), &model.BookPatch{
		Title: &title,
	})
	assert.True(t, cerr.IsKind(err, cerr.KindNotFound), "%v", err)
}

func TestUpdateLogsOverrides(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	require.NoError(t, log.Configure(&buf, slog.LevelWarn, log.FormatText))

	lib, uc := newUseCase(t)
	b := lib.AddBook(t, "Atlas", 2, 1)
	title := "World Atlas"
	_, err := uc.Update(lib.As(lib.Admin), b.ID, &model.BookPatch{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Zero(t, buf.Len(), "plain updates are not warnings")

	avail := 2
	_, err = uc.Update(lib.As(lib.Admin), b.ID, &model.BookPatch{
		CopiesAvailable: &avail,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "book copy counters overridden")
	assert.Contains(t, out, "book="+b.ID.String())
	assert.Contains(t, out, "available=2")
}
