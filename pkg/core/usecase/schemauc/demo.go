// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemauc

import (
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
)

// DemoUsers returns one fresh user per known role. The admin user
// comes first.
func DemoUsers() []model.User {
	return []model.User{
		{ID: uuid.New(), Name: "Ada Admin", Role: model.RoleAdmin},
		{ID: uuid.New(), Name: "Lena Librarian", Role: model.RoleLibrarian},
		{ID: uuid.New(), Name: "Max Manager", Role: model.RoleManager},
		{ID: uuid.New(), Name: "Tara Teacher", Role: model.RoleTeacher},
		{ID: uuid.New(), Name: "Sam Student", Role: model.RoleStudent},
		{ID: uuid.New(), Name: "Pat Parent", Role: model.RoleParent},
	}
}

type demoBook struct {
	title, author, isbn, category, location string
	copies                                  int
}

var demoBooks = []demoBook{
	{"The Go Programming Language", "Alan Donovan", "9780134190440", "Computing", "A1", 3},
	{"Introduction to Algorithms", "Thomas Cormen", "9780262033848", "Computing", "A2", 2},
	{"Clean Code", "Robert Martin", "9780132350884", "Computing", "A3", 1},
	{"To Kill a Mockingbird", "Harper Lee", "9780061120084", "Fiction", "B1", 4},
	{"Nineteen Eighty-Four", "George Orwell", "9780451524935", "Fiction", "B2", 2},
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", "Fiction", "B3", 1},
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "Fiction", "B4", 2},
}

// DemoBooks returns fresh instances of the demo catalog with all of
// their copies available. The AddedBy field is left for the caller.
func DemoBooks() []model.Book {
	now := time.Now()
	bb := make([]model.Book, 0, len(demoBooks))
	for _, d := range demoBooks {
		isbn, loc := d.isbn, d.location
		bb = append(bb, model.Book{
			ID:              uuid.New(),
			Title:           d.title,
			Author:          d.author,
			ISBN:            &isbn,
			Category:        d.category,
			CopiesTotal:     d.copies,
			CopiesAvailable: d.copies,
			Location:        &loc,
			CreatedAt:       now,
		})
	}
	return bb
}
