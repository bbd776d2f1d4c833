// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksuc

import (
	"errors"
	"time"
)

// Option is a functional option for the books use case.
type Option func(uc *UseCase) error

// WithClock option replaces the time.Now function which is used for
// stamping the creation time of books.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}
