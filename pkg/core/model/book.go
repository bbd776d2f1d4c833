// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., as required by ORM
// libraries) since adding more tags does not complicate definition of
// a struct, but can prevent unnecessary structs duplication.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBookNotFound indicates that a referenced book does not exist.
var ErrBookNotFound = errors.New("book not found")

// ErrNoCopiesAvailable indicates that a book has no available copy
// which could be lent out.
var ErrNoCopiesAvailable = errors.New("no copies available")

// Book models a catalog entry. A book represents a title which may
// have several physical copies. The CopiesAvailable counter is kept
// equal to CopiesTotal minus the number of active loans referencing
// the book by the circulation use cases. The corresponding database
// struct is kept in the pkg/adapter/db/postgres/booksrp package.
type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Category        string    `json:"category"`
	CopiesTotal     int       `json:"copies_total"`
	CopiesAvailable int       `json:"copies_available"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"` // shelf
	CoverURL        *string   `json:"cover_url,omitempty"`
	AddedBy         uuid.UUID `json:"added_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewBook contains the caller provided fields of a book which is
// going to be added to the catalog. The remaining fields (ID, counters,
// AddedBy, and CreatedAt) are filled by the catalog use case.
type NewBook struct {
	Title       string
	Author      string
	ISBN        *string
	Category    string
	CopiesTotal int
	Description *string
	Location    *string
	CoverURL    *string
}

// Validate checks the mandatory fields of a NewBook.
func (nb *NewBook) Validate() error {
	switch {
	case strings.TrimSpace(nb.Title) == "":
		return errors.New("title is empty")
	case strings.TrimSpace(nb.Author) == "":
		return errors.New("author is empty")
	case strings.TrimSpace(nb.Category) == "":
		return errors.New("category is empty")
	case nb.CopiesTotal < 0:
		return fmt.Errorf("copies total (%d) is negative", nb.CopiesTotal)
	}
	if nb.ISBN != nil {
		if err := ValidateISBN(*nb.ISBN); err != nil {
			return err
		}
	}
	return nil
}

// BookPatch is a partial update of a book. Nil fields are kept intact.
// Setting CopiesAvailable (or CopiesTotal) through a patch is an
// administrative override which is not checked against the number of
// active loans.
type BookPatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	Category        *string
	CopiesTotal     *int
	CopiesAvailable *int
	Description     *string
	Location        *string
	CoverURL        *string
}

// Empty reports whether p changes no field at all.
func (p *BookPatch) Empty() bool {
	return *p == BookPatch{}
}

// OverridesCounters reports whether p touches the copy counters.
func (p *BookPatch) OverridesCounters() bool {
	return p.CopiesTotal != nil || p.CopiesAvailable != nil
}

// Validate checks the non-nil fields of p.
func (p *BookPatch) Validate() error {
	for name, s := range map[string]*string{
		"title": p.Title, "author": p.Author, "category": p.Category,
	} {
		if s != nil && strings.TrimSpace(*s) == "" {
			return fmt.Errorf("%s is empty", name)
		}
	}
	if p.CopiesTotal != nil && *p.CopiesTotal < 0 {
		return fmt.Errorf("copies total (%d) is negative", *p.CopiesTotal)
	}
	if p.CopiesAvailable != nil && *p.CopiesAvailable < 0 {
		return fmt.Errorf(
			"copies available (%d) is negative", *p.CopiesAvailable,
		)
	}
	if p.ISBN != nil {
		if err := ValidateISBN(*p.ISBN); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the non-nil fields of p into b.
func (p *BookPatch) Apply(b *Book) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.Title, p.Title)
	set(&b.Author, p.Author)
	set(&b.Category, p.Category)
	if p.ISBN != nil {
		b.ISBN = p.ISBN
	}
	if p.Description != nil {
		b.Description = p.Description
	}
	if p.Location != nil {
		b.Location = p.Location
	}
	if p.CoverURL != nil {
		b.CoverURL = p.CoverURL
	}
	if p.CopiesTotal != nil {
		b.CopiesTotal = *p.CopiesTotal
	}
	if p.CopiesAvailable != nil {
		b.CopiesAvailable = *p.CopiesAvailable
	}
}

// BookQuery filters the catalog listing. An empty Category matches all
// categories and an empty Search matches all titles and authors.
type BookQuery struct {
	Search   string
	Category string
}

// Matches reports whether b passes the q filters. Category is compared
// exactly, while Search is a case-insensitive substring of either the
// title or the author.
func (q BookQuery) Matches(b *Book) bool {
	if q.Category != "" && b.Category != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	s := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(b.Title), s) ||
		strings.Contains(strings.ToLower(b.Author), s)
}

// ErrInvalidISBN indicates that an ISBN is neither a valid ISBN-10
// nor a valid ISBN-13 value.
var ErrInvalidISBN = errors.New("invalid isbn")

// ValidateISBN accepts ISBN-10 and ISBN-13 values, ignoring hyphens
// and spaces, and verifies their check digits.
func ValidateISBN(isbn string) error {
	s := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	switch len(s) {
	case 10:
		sum := 0
		for i, r := range s {
			var d int
			switch {
			case r >= '0' && r <= '9':
				d = int(r - '0')
			case i == 9 && (r == 'X' || r == 'x'):
				d = 10
			default:
				return ErrInvalidISBN
			}
			sum += (10 - i) * d
		}
		if sum%11 != 0 {
			return ErrInvalidISBN
		}
	case 13:
		sum := 0
		for i, r := range s {
			if r < '0' || r > '9' {
				return ErrInvalidISBN
			}
			d := int(r - '0')
			if i%2 == 1 {
				d *= 3
			}
			sum += d
		}
		if sum%10 != 0 {
			return ErrInvalidISBN
		}
	default:
		return ErrInvalidISBN
	}
	return nil
}
