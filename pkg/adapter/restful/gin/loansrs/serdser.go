// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/school-library/pkg/core/model"
)

type rawFindActiveLoanReq struct {
	BorrowerID string `form:"borrower" binding:"required,uuid"`
}

type findActiveLoanReq struct {
	BookID     uuid.UUID
	BorrowerID uuid.UUID
}

type rawCheckoutReq struct {
	BookID     string `form:"book_id" binding:"required,uuid"`
	BorrowerID string `form:"borrower_id" binding:"required,uuid"`
	DueDate    string `form:"due_date" binding:"omitempty"`
	Notes      string `form:"notes" binding:"omitempty,max=1000"`
}

type rawReturnReq struct {
	Condition string `form:"condition" binding:"omitempty,max=500"`
}

type returnReq struct {
	LoanID    uuid.UUID
	Condition string
}

// dueDateLayouts lists the accepted due_date formats. A date without
// the time part means the end of that day in UTC.
var dueDateLayouts = []string{time.RFC3339, time.DateOnly}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == time.DateOnly {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, true
	}
	return time.Time{}, false
}

func (rs *resource) DserFindActiveLoanReq(c *gin.Context) (
	*findActiveLoanReq, bool,
) {
	var errs map[string][]string
	bookID := serdser.ParseUUID(c, &errs, "bid")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	req := &rawFindActiveLoanReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil, false
	}
	return &findActiveLoanReq{
		BookID:     bookID,
		BorrowerID: uuid.MustParse(req.BorrowerID),
	}, true
}

func (rs *resource) DserUserID(c *gin.Context) (uuid.UUID, bool) {
	var errs map[string][]string
	id := serdser.ParseUUID(c, &errs, "uid")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return uuid.Nil, false
	}
	return id, true
}

func (rs *resource) DserCheckoutReq(c *gin.Context) (
	*model.CheckoutRequest, bool,
) {
	req := &rawCheckoutReq{}
	if ok := serdser.Bind(c, req, binding.Form); !ok {
		return nil, false
	}
	val := &model.CheckoutRequest{
		BookID:     uuid.MustParse(req.BookID),
		BorrowerID: uuid.MustParse(req.BorrowerID),
		Notes:      req.Notes,
	}
	if req.DueDate != "" {
		var ok bool
		val.DueDate, ok = parseDueDate(req.DueDate)
		if !ok {
			var errs map[string][]string
			serdser.AddErr(
				&errs, "due_date",
				"The due_date must be an RFC 3339 time or a date.",
			)
			c.JSON(http.StatusBadRequest, errs)
			return nil, false
		}
	}
	return val, true
}

func (rs *resource) DserReturnReq(c *gin.Context) (*returnReq, bool) {
	var errs map[string][]string
	id := serdser.ParseUUID(c, &errs, "lid")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	req := &rawReturnReq{}
	if ok := serdser.Bind(c, req, binding.Form); !ok {
		return nil, false
	}
	return &returnReq{LoanID: id, Condition: req.Condition}, true
}
