// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrs realizes the loans resource, allowing the ledger
// and circulation REST APIs to be accepted and delegated to the loans
// and circulation use cases.
package loansrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/school-library/pkg/core/usecase/circulationuc"
	"github.com/momeni/school-library/pkg/core/usecase/loansuc"
)

type resource struct {
	loans *loansuc.UseCase
	circ  *circulationuc.UseCase
}

// Register instantiates a resource adapting the loans and circulation
// use case instances with the relevant REST APIs including:
//  1. GET request to /api/libweb/v1/books/:bid/loans/active
//     in order to find the active loan of a borrower for a book,
//  2. GET request to /api/libweb/v1/loans/active
//     in order to list the enriched active loans,
//  3. GET request to /api/libweb/v1/loans/stats
//     in order to fetch the catalog and loans counters,
//  4. GET request to /api/libweb/v1/users/:uid/loans
//     in order to fetch the loans history of a borrower,
//  5. POST request to /api/libweb/v1/loans
//     in order to check out a book copy, and
//  6. POST request to /api/libweb/v1/loans/:lid/return
//     in order to return a borrowed copy.
//
// The throttle handlers (if any) run before the mutating APIs.
func Register(
	r *gin.RouterGroup,
	loans *loansuc.UseCase,
	circ *circulationuc.UseCase,
	throttle ...gin.HandlerFunc,
) {
	rs := &resource{loans: loans, circ: circ}
	r.GET("books/:bid/loans/active", rs.FindActiveLoan)
	r.GET("loans/active", rs.ListActiveLoans)
	r.GET("loans/stats", rs.Stats)
	r.GET("users/:uid/loans", rs.History)
	r.POST("loans", append(throttle, rs.Checkout)...)
	r.POST("loans/:lid/return", append(throttle, rs.Return)...)
}

func (rs *resource) FindActiveLoan(c *gin.Context) {
	req, ok := rs.DserFindActiveLoanReq(c)
	if !ok {
		return
	}
	l, err := rs.loans.FindActiveLoan(c, req.BookID, req.BorrowerID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"detail": "no active loan",
		})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (rs *resource) ListActiveLoans(c *gin.Context) {
	al, err := rs.loans.ListActive(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, al)
}

func (rs *resource) Stats(c *gin.Context) {
	s, err := rs.loans.Stats(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (rs *resource) History(c *gin.Context) {
	id, ok := rs.DserUserID(c)
	if !ok {
		return
	}
	ll, err := rs.loans.History(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ll)
}

func (rs *resource) Checkout(c *gin.Context) {
	req, ok := rs.DserCheckoutReq(c)
	if !ok {
		return
	}
	id, err := rs.circ.Checkout(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (rs *resource) Return(c *gin.Context) {
	req, ok := rs.DserReturnReq(c)
	if !ok {
		return
	}
	l, err := rs.circ.Return(c, req.LoanID, req.Condition)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
