// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so other packages may
// instantiate it (with the libweb middlewares) without depending on
// the gin-gonic package directly.
package gin

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine
type Context = gin.Context

var formTagNames sync.Once

// New creates an Engine which uses the given middlewares.
// Handlers receive the *gin.Context as their context.Context, so the
// engine falls back to the request context for values which are set
// by the middlewares (such as the authenticated subject).
func New(middlewares ...HandlerFunc) *Engine {
	formTagNames.Do(useFormTagNames)
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(middlewares...)
	return e
}

// useFormTagNames makes the validation errors to be keyed by the
// form field names instead of the Go struct field names.
func useFormTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func Logger() HandlerFunc {
	return gin.Logger()
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}

// Healthz reports that the engine is serving requests. It does not
// touch the database.
func Healthz(c *Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
