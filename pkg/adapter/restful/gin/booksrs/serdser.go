// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/school-library/pkg/core/model"
)

type rawListBooksReq struct {
	Search   string `form:"search" binding:"omitempty,max=200"`
	Category string `form:"category" binding:"omitempty,max=100"`
}

type rawAddBookReq struct {
	Title       string  `form:"title" binding:"required,max=300"`
	Author      string  `form:"author" binding:"required,max=200"`
	ISBN        *string `form:"isbn" binding:"omitempty,isbn"`
	Category    string  `form:"category" binding:"required,max=100"`
	CopiesTotal *int    `form:"copies_total" binding:"required,min=0"`
	Description *string `form:"description" binding:"omitempty,max=4000"`
	Location    *string `form:"location" binding:"omitempty,max=100"`
	CoverURL    *string `form:"cover_url" binding:"omitempty,url"`
}

type rawUpdateBookReq struct {
	Title           *string `form:"title" binding:"omitempty,min=1,max=300"`
	Author          *string `form:"author" binding:"omitempty,min=1,max=200"`
	ISBN            *string `form:"isbn" binding:"omitempty,isbn"`
	Category        *string `form:"category" binding:"omitempty,min=1,max=100"`
	CopiesTotal     *int    `form:"copies_total" binding:"omitempty,min=0"`
	CopiesAvailable *int    `form:"copies_available" binding:"omitempty,min=0"`
	Description     *string `form:"description" binding:"omitempty,max=4000"`
	Location        *string `form:"location" binding:"omitempty,max=100"`
	CoverURL        *string `form:"cover_url" binding:"omitempty,url"`
}

type updateBookReq struct {
	BookID uuid.UUID
	Patch  *model.BookPatch
}

func (rs *resource) DserListBooksReq(c *gin.Context) (
	q model.BookQuery, ok bool,
) {
	req := &rawListBooksReq{}
	if ok = serdser.Bind(c, req, binding.Query); !ok {
		return
	}
	q.Search = req.Search
	q.Category = req.Category
	return q, true
}

func (rs *resource) DserBookID(c *gin.Context) (uuid.UUID, bool) {
	var errs map[string][]string
	id := serdser.ParseUUID(c, &errs, "bid")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return uuid.Nil, false
	}
	return id, true
}

func (rs *resource) DserAddBookReq(c *gin.Context) (*model.NewBook, bool) {
	req := &rawAddBookReq{}
	if ok := serdser.Bind(c, req, binding.Form); !ok {
		return nil, false
	}
	return &model.NewBook{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		CopiesTotal: *req.CopiesTotal,
		Description: req.Description,
		Location:    req.Location,
		CoverURL:    req.CoverURL,
	}, true
}

func (rs *resource) DserUpdateBookReq(c *gin.Context) (
	*updateBookReq, bool,
) {
	var errs map[string][]string
	id := serdser.ParseUUID(c, &errs, "bid")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	req := &rawUpdateBookReq{}
	if ok := serdser.Bind(c, req, binding.Form); !ok {
		return nil, false
	}
	p := &model.BookPatch{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        req.Category,
		CopiesTotal:     req.CopiesTotal,
		CopiesAvailable: req.CopiesAvailable,
		Description:     req.Description,
		Location:        req.Location,
		CoverURL:        req.CoverURL,
	}
	if p.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "nothing to update",
		})
		return nil, false
	}
	return &updateBookReq{BookID: id, Patch: p}, true
}
