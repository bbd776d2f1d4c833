// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/school-library/internal/test/dbcontainer"
	"github.com/momeni/school-library/pkg/adapter/auth/jwtauth"
	"github.com/momeni/school-library/pkg/adapter/config"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/school-library/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/school-library/pkg/adapter/restful/gin"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/routes"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

type IntegrationGinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pg   *sqltestutil.PostgresContainer
	Pool *postgres.Pool
	Gin  *gin.Engine

	Authn     *jwtauth.Authenticator
	Librarian model.User
	Borrowers []model.User
}

func TestIntegrationGinTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool := dbcontainer.Start(ctx, t, 60*time.Second)
	suite.Run(t, &IntegrationGinTestSuite{
		Ctx:  ctx,
		Pg:   pg,
		Pool: pool,
	})
}

func (igts *IntegrationGinTestSuite) SetupSuite() {
	dbcontainer.CreateTables(igts.Ctx, igts.T(), igts.Pool)
	c, err := config.Parse([]byte(`
database: {host: 127.0.0.1, port: 5432, name: pgtest}
gin: {logger: true, recovery: true}
versions: {database: 1.0.0, config: 1.0.0}
`))
	igts.Require().NoError(err, "failed to parse the configs")
	rr := config.Repos{
		Users: usersrp.New(),
		Books: booksrp.New(),
		Loans: loansrp.New(),
	}
	igts.Librarian = model.User{
		ID: uuid.New(), Name: "Lena", Role: model.RoleLibrarian,
	}
	uu := []*model.User{&igts.Librarian}
	for i := 0; i < 8; i++ {
		igts.Borrowers = append(igts.Borrowers, model.User{
			ID: uuid.New(), Name: "Student", Role: model.RoleStudent,
		})
	}
	for i := range igts.Borrowers {
		uu = append(uu, &igts.Borrowers[i])
	}
	err = igts.Pool.Conn(igts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := rr.Users.Tx(tx)
			for _, u := range uu {
				if err := q.Create(ctx, u); err != nil {
					return err
				}
			}
			return nil
		})
	})
	igts.Require().NoError(err, "failed to create users")

	igts.Authn, err = jwtauth.New("integration-secret", c.Auth.Issuer)
	igts.Require().NoError(err)
	igts.Gin = c.Gin.NewEngine()
	igts.Require().NotNil(igts.Gin, "cannot instantiate Gin engine")
	err = routes.Register(igts.Gin, igts.Pool, rr, c, igts.Authn.Middleware())
	igts.Require().NoError(err, "failed to register Gin routes")
}

func urlEncoded(m map[string]string) io.Reader {
	u := url.Values{}
	for k, v := range m {
		u.Set(k, v)
	}
	return strings.NewReader(u.Encode())
}

func (igts *IntegrationGinTestSuite) sendReqRecvResp(
	u model.User, method, path string, form map[string]string, res any,
) int {
	req, err := http.NewRequest(
		method, routes.Prefix+"/"+path, urlEncoded(form),
	)
	igts.Require().NoError(err, "cannot create request")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	tok, err := igts.Authn.Issue(u.ID, time.Minute)
	igts.Require().NoError(err)
	req.Header.Add("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	igts.Gin.ServeHTTP(w, req)
	if res != nil {
		igts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	}
	return w.Code
}

func (igts *IntegrationGinTestSuite) addBook(title string, copies int) uuid.UUID {
	var created struct{ ID uuid.UUID }
	code := igts.sendReqRecvResp(
		igts.Librarian, http.MethodPost, "books",
		map[string]string{
			"title":        title,
			"author":       "Someone",
			"category":     "Integration",
			"copies_total": strconv.Itoa(copies),
		},
		&created,
	)
	igts.Require().Equal(http.StatusCreated, code)
	return created.ID
}

func (igts *IntegrationGinTestSuite) book(id uuid.UUID) model.Book {
	var b model.Book
	code := igts.sendReqRecvResp(
		igts.Librarian, http.MethodGet, "books/"+id.String(), nil, &b,
	)
	igts.Require().Equal(http.StatusOK, code)
	return b
}

func (igts *IntegrationGinTestSuite) checkout(
	bookID uuid.UUID, borrower model.User,
) (int, uuid.UUID) {
	var created struct{ ID uuid.UUID }
	code := igts.sendReqRecvResp(
		igts.Librarian, http.MethodPost, "loans",
		map[string]string{
			"book_id":     bookID.String(),
			"borrower_id": borrower.ID.String(),
		},
		&created,
	)
	return code, created.ID
}

func (igts *IntegrationGinTestSuite) TestNotFound() {
	res := &struct{ Detail string }{}
	code := igts.sendReqRecvResp(
		igts.Librarian, http.MethodGet, "books/"+uuid.NewString(), nil, res,
	)
	igts.Equal(http.StatusNotFound, code)
	igts.Equal(model.ErrBookNotFound.Error(), res.Detail)

	code = igts.sendReqRecvResp(
		igts.Librarian, http.MethodPost,
		"loans/"+uuid.NewString()+"/return", nil, res,
	)
	igts.Equal(http.StatusNotFound, code)
	igts.Equal(model.ErrLoanNotFound.Error(), res.Detail)
}

func (igts *IntegrationGinTestSuite) TestConcurrentLastCopy() {
	bookID := igts.addBook("Last Copy", 1)
	codes := make([]int, len(igts.Borrowers))
	var wg sync.WaitGroup
	for i, u := range igts.Borrowers {
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], _ = igts.checkout(bookID, u)
		}()
	}
	wg.Wait()
	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	igts.Equal(1, created, "codes: %v", codes)
	igts.Equal(len(codes)-1, conflicts, "codes: %v", codes)
	igts.Equal(0, igts.book(bookID).CopiesAvailable)
}

func (igts *IntegrationGinTestSuite) TestConcurrentSameBorrower() {
	bookID := igts.addBook("Many Copies", 5)
	borrower := igts.Borrowers[0]
	codes := make([]int, 6)
	var wg sync.WaitGroup
	for i := range codes {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], _ = igts.checkout(bookID, borrower)
		}()
	}
	wg.Wait()
	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			igts.Equal(http.StatusConflict, code)
		}
	}
	igts.Equal(1, created, "codes: %v", codes)
	igts.Equal(4, igts.book(bookID).CopiesAvailable)
}

func (igts *IntegrationGinTestSuite) TestCheckoutAndReturn() {
	bookID := igts.addBook("Round Trip", 2)
	borrower := igts.Borrowers[1]
	code, loanID := igts.checkout(bookID, borrower)
	igts.Require().Equal(http.StatusCreated, code)
	igts.Equal(1, igts.book(bookID).CopiesAvailable)

	var al []model.ActiveLoan
	code = igts.sendReqRecvResp(
		igts.Librarian, http.MethodGet, "loans/active", nil, &al,
	)
	igts.Require().Equal(http.StatusOK, code)
	found := false
	for _, a := range al {
		if a.ID == loanID {
			found = true
			igts.Equal("Round Trip", a.BookTitle)
			igts.Equal(borrower.Name, a.BorrowerName)
			igts.Equal(string(model.RoleStudent), a.BorrowerRole)
		}
	}
	igts.True(found, "active loans must include %s", loanID)

	var s model.Stats
	code = igts.sendReqRecvResp(
		igts.Librarian, http.MethodGet, "loans/stats", nil, &s,
	)
	igts.Require().Equal(http.StatusOK, code)
	igts.GreaterOrEqual(s.ActiveLoans, int64(1))
	igts.LessOrEqual(s.AvailableCopies, s.TotalCopies)

	var l model.Loan
	code = igts.sendReqRecvResp(
		igts.Librarian, http.MethodPost, "loans/"+loanID.String()+"/return",
		map[string]string{"condition": "good"}, &l,
	)
	igts.Require().Equal(http.StatusOK, code)
	igts.Equal(model.LoanStatusReturned, l.Status)
	igts.Equal("Condition: good", l.Notes)
	igts.Equal(2, igts.book(bookID).CopiesAvailable)

	res := &struct{ Detail string }{}
	code = igts.sendReqRecvResp(
		igts.Librarian, http.MethodPost, "loans/"+loanID.String()+"/return",
		nil, res,
	)
	igts.Equal(http.StatusConflict, code)
	igts.Equal(model.ErrLoanNotActive.Error(), res.Detail)
	igts.Equal(2, igts.book(bookID).CopiesAvailable)

	code, _ = igts.checkout(bookID, borrower)
	igts.Equal(http.StatusCreated, code, "borrowing again after return")

	var ll []model.Loan
	code = igts.sendReqRecvResp(
		borrower, http.MethodGet, "users/"+borrower.ID.String()+"/loans",
		nil, &ll,
	)
	igts.Require().Equal(http.StatusOK, code)
	igts.Len(ll, 2)
}
