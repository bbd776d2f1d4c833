// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// Books implements the repo.Books interface.
type Books struct {
}

// NewBooks instantiates the books repository.
func NewBooks() *Books {
	return &Books{}
}

type booksQueryer struct {
	queryer
}

func (books *Books) Conn(c repo.Conn) repo.BooksConnQueryer {
	return booksQueryer{connQueryer(c)}
}

func (books *Books) Tx(tx repo.Tx) repo.BooksTxQueryer {
	return booksQueryer{txQueryer(tx)}
}

func (q booksQueryer) List(
	_ context.Context, bq model.BookQuery,
) (bb []model.Book, err error) {
	err = q.run(func(s *Store) error {
		bb = make([]model.Book, 0, len(s.books))
		for _, b := range s.books {
			if bq.Matches(&b) {
				bb = append(bb, b)
			}
		}
		return nil
	})
	sort.Slice(bb, func(i, j int) bool {
		if bb[i].Title != bb[j].Title {
			return bb[i].Title < bb[j].Title
		}
		return bb[i].ID.String() < bb[j].ID.String()
	})
	return bb, err
}

func (q booksQueryer) Get(
	_ context.Context, bookID uuid.UUID,
) (b *model.Book, err error) {
	err = q.run(func(s *Store) error {
		b, err = getBook(s, bookID)
		return err
	})
	return b, err
}

func getBook(s *Store, bookID uuid.UUID) (*model.Book, error) {
	b, ok := s.books[bookID]
	if !ok {
		return nil, cerr.NotFound(model.ErrBookNotFound)
	}
	return &b, nil
}

func (q booksQueryer) GetForUpdate(
	ctx context.Context, bookID uuid.UUID,
) (*model.Book, error) {
	return q.Get(ctx, bookID) // the enclosing Tx holds the store mutex
}

func (q booksQueryer) Create(_ context.Context, b *model.Book) error {
	return q.run(func(s *Store) error {
		if _, ok := s.books[b.ID]; ok {
			return cerr.Conflict(fmt.Errorf("book %s exists", b.ID))
		}
		s.books[b.ID] = *b
		return nil
	})
}

func (q booksQueryer) Patch(
	_ context.Context, bookID uuid.UUID, p *model.BookPatch,
) (b *model.Book, err error) {
	err = q.run(func(s *Store) error {
		b, err = getBook(s, bookID)
		if err != nil {
			return err
		}
		p.Apply(b)
		s.books[bookID] = *b
		return nil
	})
	return b, err
}

func (q booksQueryer) Totals(
	context.Context,
) (books, copies, available int64, err error) {
	err = q.run(func(s *Store) error {
		for _, b := range s.books {
			books++
			copies += int64(b.CopiesTotal)
			available += int64(b.CopiesAvailable)
		}
		return nil
	})
	return
}

func (q booksQueryer) AdjustAvailable(
	_ context.Context, bookID uuid.UUID, delta int,
) (found bool, err error) {
	err = q.run(func(s *Store) error {
		b, ok := s.books[bookID]
		if !ok {
			return nil
		}
		found = true
		b.CopiesAvailable += delta
		s.books[bookID] = b
		return nil
	})
	return found, err
}

// RemoveBook deletes the bookID book record directly, as an operator
// may do on the database, without touching the loans which refer to
// it. There is no such operation on the repo.Books interface.
func (s *Store) RemoveBook(bookID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, bookID)
}
