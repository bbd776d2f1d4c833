// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all use case and resource
// packages based on the user provided configuration settings.
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/school-library/pkg/adapter/config"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/booksrs"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/loansrs"
	"github.com/momeni/school-library/pkg/core/repo"
)

// Prefix is the common path of all libweb REST APIs.
const Prefix = "/api/libweb/v1"

// Register instantiates the use cases based on the c configuration
// settings. The p connections pool is passed to the use case
// instances, so they may acquire/release connections and transactions
// on demand. These connections/transactions will be passed to the rr
// repositories later in order to run relevant queries on them.
// Register instantiates a series of "resource" structs, from packages
// which are named like booksrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
// The authn middleware (if not nil) authenticates the callers of all
// APIs, while the rate limiting middlewares (if configured) only run
// before the mutating APIs.
// Possible errors will be returned after possible wrapping.
func Register(
	e *gin.Engine,
	p repo.Pool,
	rr config.Repos,
	c *config.Config,
	authn gin.HandlerFunc,
) error {
	identity := c.NewIdentityUseCase(p, rr)
	books, err := c.NewBooksUseCase(p, rr, identity)
	if err != nil {
		return fmt.Errorf("creating books use case: %w", err)
	}
	loans, err := c.NewLoansUseCase(p, rr, identity)
	if err != nil {
		return fmt.Errorf("creating loans use case: %w", err)
	}
	circ, err := c.NewCirculationUseCase(p, rr, identity)
	if err != nil {
		return fmt.Errorf("creating circulation use case: %w", err)
	}
	r := e.Group(Prefix)
	if authn != nil {
		r.Use(authn)
	}
	throttle := c.Gin.Throttle()
	booksrs.Register(r, books, throttle...)
	loansrs.Register(r, loans, circ, throttle...)
	return nil
}
