// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization/deserialization helpers
// which are shared by the resource packages. Deserialization failures
// are reported as a map from field names to their error messages,
// while the use case errors are reported as a {"detail": "..."} object
// with the HTTP status code which is carried by the cerr.Error.
package serdser

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/log"
)

// Bind binds req using the b binding and validates it.
// If it fails, a 400 response is written and false is returned.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), message(ferr))
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

// ParseUUID parses the name path parameter as a UUID and records
// a validation error in errs if it fails.
func ParseUUID(
	c *gin.Context, errs *map[string][]string, name string,
) uuid.UUID {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		AddErr(errs, name, err.Error())
		return uuid.Nil
	}
	return id
}

// message describes a failed validation tag for the API clients.
func message(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return "is required"
	case "uuid", "uuid4":
		return "must be a UUID"
	case "isbn":
		return "must be an ISBN-10 or ISBN-13"
	case "url":
		return "must be a URL"
	case "min":
		if ferr.Kind() == reflect.String {
			return fmt.Sprintf("must have at least %s characters", ferr.Param())
		}
		return "must be at least " + ferr.Param()
	case "max":
		if ferr.Kind() == reflect.String {
			return fmt.Sprintf("must have at most %s characters", ferr.Param())
		}
		return "must be at most " + ferr.Param()
	default:
		return fmt.Sprintf("failed the %q check", ferr.Tag())
	}
}

// AddErr appends msgs to the name field errors.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if *errs == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// Assert records msgs for the name field if ok is false.
func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// SerErr writes err as the response. Unclassified errors are logged
// and reported with 500 without exposing their details.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "request failed", log.Err("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": "internal server error",
	})
}
