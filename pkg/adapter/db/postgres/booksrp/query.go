// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gBook struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	Title           string
	Author          string
	ISBN            *string `gorm:"column:isbn"`
	Category        string
	CopiesTotal     int
	CopiesAvailable int
	Description     *string
	Location        *string
	CoverURL        *string   `gorm:"column:cover_url"`
	AddedBy         uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
}

func (gb *gBook) TableName() string {
	return "books"
}

func (gb *gBook) Model() *model.Book {
	return &model.Book{
		ID:              gb.ID,
		Title:           gb.Title,
		Author:          gb.Author,
		ISBN:            gb.ISBN,
		Category:        gb.Category,
		CopiesTotal:     gb.CopiesTotal,
		CopiesAvailable: gb.CopiesAvailable,
		Description:     gb.Description,
		Location:        gb.Location,
		CoverURL:        gb.CoverURL,
		AddedBy:         gb.AddedBy,
		CreatedAt:       gb.CreatedAt,
	}
}

func fromModel(b *model.Book) *gBook {
	return &gBook{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Category:        b.Category,
		CopiesTotal:     b.CopiesTotal,
		CopiesAvailable: b.CopiesAvailable,
		Description:     b.Description,
		Location:        b.Location,
		CoverURL:        b.CoverURL,
		AddedBy:         b.AddedBy,
		CreatedAt:       b.CreatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func List[Q postgres.Queryer](
	ctx context.Context, q Q, bq model.BookQuery,
) ([]model.Book, error) {
	gdb := q.GORM(ctx).Model(&gBook{})
	if bq.Category != "" {
		gdb = gdb.Where("category = ?", bq.Category)
	}
	if bq.Search != "" {
		pattern := "%" + likeEscaper.Replace(bq.Search) + "%"
		gdb = gdb.Where("(title ILIKE ? OR author ILIKE ?)", pattern, pattern)
	}
	var gbs []gBook
	if err := gdb.Order("title, id").Find(&gbs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	bb := make([]model.Book, 0, len(gbs))
	for i := range gbs {
		bb = append(bb, *gbs[i].Model())
	}
	return bb, nil
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, bookID uuid.UUID,
) (*model.Book, error) {
	return get(q.GORM(ctx), bookID)
}

// GetForUpdate locks the fetched row (SELECT ... FOR UPDATE), so it
// must be called within a transaction.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, bookID uuid.UUID,
) (*model.Book, error) {
	gdb := tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return get(gdb, bookID)
}

func get(gdb *gorm.DB, bookID uuid.UUID) (*model.Book, error) {
	var gbs []gBook
	err := gdb.Where("id = ?", bookID).Limit(1).Find(&gbs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gbs) == 0 {
		return nil, cerr.NotFound(model.ErrBookNotFound)
	}
	return gbs[0].Model(), nil
}

func Create[Q postgres.Queryer](
	ctx context.Context, q Q, b *model.Book,
) error {
	err := q.GORM(ctx).Create(fromModel(b)).Error
	switch {
	case postgres.HasCode(err, postgres.UniqueViolation):
		return cerr.Conflict(fmt.Errorf("book %s exists", b.ID))
	case err != nil:
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func Patch[Q postgres.Queryer](
	ctx context.Context, q Q, bookID uuid.UUID, p *model.BookPatch,
) (*model.Book, error) {
	cols := patchColumns(p)
	if len(cols) == 0 {
		return Get(ctx, q, bookID)
	}
	var gb gBook
	gdb := q.GORM(ctx).Model(&gb).Clauses(clause.Returning{}).Where(
		"id = ?", bookID,
	).Updates(cols)
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := gdb.RowsAffected; n != 1 {
		return nil, cerr.NotFound(fmt.Errorf(
			"expected one row, but got %d: %w", n, model.ErrBookNotFound,
		))
	}
	return gb.Model(), nil
}

func patchColumns(p *model.BookPatch) map[string]any {
	cols := make(map[string]any)
	for name, v := range map[string]*string{
		"title":       p.Title,
		"author":      p.Author,
		"isbn":        p.ISBN,
		"category":    p.Category,
		"description": p.Description,
		"location":    p.Location,
		"cover_url":   p.CoverURL,
	} {
		if v != nil {
			cols[name] = *v
		}
	}
	if p.CopiesTotal != nil {
		cols["copies_total"] = *p.CopiesTotal
	}
	if p.CopiesAvailable != nil {
		cols["copies_available"] = *p.CopiesAvailable
	}
	return cols
}

func Totals[Q postgres.Queryer](
	ctx context.Context, q Q,
) (books, copies, available int64, err error) {
	row := q.GORM(ctx).Model(&gBook{}).Select(
		"count(*), coalesce(sum(copies_total), 0), " +
			"coalesce(sum(copies_available), 0)",
	).Row()
	if err = row.Scan(&books, &copies, &available); err != nil {
		err = fmt.Errorf("query: %w", err)
	}
	return
}

func AdjustAvailable(
	ctx context.Context, tx *postgres.Tx, bookID uuid.UUID, delta int,
) (bool, error) {
	gdb := tx.GORM(ctx).Model(&gBook{}).Where("id = ?", bookID).UpdateColumn(
		"copies_available", gorm.Expr("copies_available + ?", delta),
	)
	if err := gdb.Error; err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return gdb.RowsAffected == 1, nil
}
