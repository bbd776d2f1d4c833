// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrs realizes the books resource, allowing the catalog
// REST APIs to be accepted and delegated to the books use case.
package booksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/school-library/pkg/core/usecase/booksuc"
)

type resource struct {
	books *booksuc.UseCase
}

// Register instantiates a resource adapting the books use case
// instance with the relevant REST APIs including:
//  1. GET request to /api/libweb/v1/books
//     in order to list (or search) the catalog,
//  2. GET request to /api/libweb/v1/books/:bid
//     in order to fetch one book,
//  3. POST request to /api/libweb/v1/books
//     in order to add a book, and
//  4. PATCH request to /api/libweb/v1/books/:bid
//     in order to update a book partially.
//
// The throttle handlers (if any) run before the mutating APIs.
func Register(
	r *gin.RouterGroup, books *booksuc.UseCase, throttle ...gin.HandlerFunc,
) {
	rs := &resource{books: books}
	r.GET("books", rs.ListBooks)
	r.GET("books/:bid", rs.GetBook)
	r.POST("books", append(throttle, rs.AddBook)...)
	r.PATCH("books/:bid", append(throttle, rs.UpdateBook)...)
}

func (rs *resource) ListBooks(c *gin.Context) {
	q, ok := rs.DserListBooksReq(c)
	if !ok {
		return
	}
	bb, err := rs.books.List(c, q)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bb)
}

func (rs *resource) GetBook(c *gin.Context) {
	id, ok := rs.DserBookID(c)
	if !ok {
		return
	}
	b, err := rs.books.Get(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) AddBook(c *gin.Context) {
	nb, ok := rs.DserAddBookReq(c)
	if !ok {
		return
	}
	id, err := rs.books.Add(c, nb)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (rs *resource) UpdateBook(c *gin.Context) {
	req, ok := rs.DserUpdateBookReq(c)
	if !ok {
		return
	}
	b, err := rs.books.Update(c, req.BookID, req.Patch)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
