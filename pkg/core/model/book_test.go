// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/school-library/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateISBN(t *testing.T) {
	for _, tc := range []struct {
		isbn string
		ok   bool
	}{
		{"9780134190440", true},
		{"978-0-13-419044-0", true},
		{"0-306-40615-2", true},
		{"080442957X", true},
		{"9780134190441", false},
		{"0306406153", false},
		{"12345", false},
		{"97801341904AB", false},
		{"", false},
	} {
		err := model.ValidateISBN(tc.isbn)
		if tc.ok {
			assert.NoError(t, err, tc.isbn)
		} else {
			assert.ErrorIs(t, err, model.ErrInvalidISBN, tc.isbn)
		}
	}
}

func TestNewBookValidate(t *testing.T) {
	bad := "123"
	nb := model.NewBook{
		Title: "Emma", Author: "Jane Austen", Category: "Fiction",
		CopiesTotal: 1,
	}
	assert.NoError(t, nb.Validate())

	c := nb
	c.Title = "  "
	assert.Error(t, c.Validate())
	c = nb
	c.CopiesTotal = -1
	assert.Error(t, c.Validate())
	c = nb
	c.ISBN = &bad
	assert.ErrorIs(t, c.Validate(), model.ErrInvalidISBN)
}

func TestBookPatch(t *testing.T) {
	title, avail := "New Title", 7
	p := &model.BookPatch{Title: &title}
	assert.False(t, p.Empty())
	assert.False(t, p.OverridesCounters())
	assert.True(t, (&model.BookPatch{}).Empty())

	b := &model.Book{Title: "Old", Author: "A", CopiesTotal: 2, CopiesAvailable: 1}
	p.CopiesAvailable = &avail
	assert.True(t, p.OverridesCounters())
	assert.NoError(t, p.Validate())
	p.Apply(b)
	assert.Equal(t, "New Title", b.Title)
	assert.Equal(t, "A", b.Author)
	assert.Equal(t, 2, b.CopiesTotal)
	assert.Equal(t, 7, b.CopiesAvailable)

	neg := -1
	assert.Error(t, (&model.BookPatch{CopiesTotal: &neg}).Validate())
	empty := ""
	assert.Error(t, (&model.BookPatch{Author: &empty}).Validate())
}

func TestBookQueryMatches(t *testing.T) {
	b := &model.Book{Title: "The Hobbit", Author: "J. R. R. Tolkien", Category: "Fantasy"}
	assert.True(t, model.BookQuery{}.Matches(b))
	assert.True(t, model.BookQuery{Search: "hobb"}.Matches(b))
	assert.True(t, model.BookQuery{Search: "TOLKIEN"}.Matches(b))
	assert.True(t, model.BookQuery{Category: "Fantasy", Search: "the"}.Matches(b))
	assert.False(t, model.BookQuery{Category: "Fiction"}.Matches(b))
	assert.False(t, model.BookQuery{Search: "ring"}.Matches(b))
}
