// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"

	"github.com/google/uuid"
)

// ID returns an Attr for a book, loan, or user ID.
func ID(key string, id uuid.UUID) slog.Attr {
	return slog.String(key, id.String())
}

// Valuer returns an Attr which is resolved by value.LogValue lazily,
// only if the record is going to be handled.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr holding the err message, or "no-error" for nil.
func Err(key string, err error) slog.Attr {
	if err == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, err.Error())
}
