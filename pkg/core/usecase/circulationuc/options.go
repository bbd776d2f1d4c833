// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package circulationuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the circulation use case.
type Option func(uc *UseCase) error

// WithDefaultLoanPeriod option configures the loan period which is
// used when a checkout request has no due date.
func WithDefaultLoanPeriod(period time.Duration) Option {
	return func(uc *UseCase) error {
		if p := int64(period); p <= 0 {
			return fmt.Errorf("loan period (%d) is not positive", p)
		}
		if uc.defaultLoanPeriod != 0 {
			return errors.New("loan period is already configured")
		}
		uc.defaultLoanPeriod = period
		return nil
	}
}

// WithClock option replaces the time.Now function which is used for
// stamping the borrow and return dates.
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
