// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// RangeError reports a setting which is out of its configured bounds,
// or bounds which do not form a range at all.
type RangeError[T cmp.Ordered] struct {
	Name     string
	Value    T
	Min, Max *T
}

func (e *RangeError[T]) Error() string {
	switch {
	case e.Min != nil && e.Max != nil && *e.Min > *e.Max:
		return fmt.Sprintf(
			"%s: minimum %v is greater than maximum %v",
			e.Name, *e.Min, *e.Max,
		)
	case e.Min != nil && e.Value < *e.Min:
		return fmt.Sprintf(
			"%s: %v is less than minimum %v", e.Name, e.Value, *e.Min,
		)
	default:
		return fmt.Sprintf(
			"%s: %v is greater than maximum %v", e.Name, e.Value, *e.Max,
		)
	}
}

// VerifyRange checks that minb <= *value <= maxb. Nil bounds are not
// checked and a nil value only needs consistent bounds.
func VerifyRange[T cmp.Ordered](name string, value, minb, maxb *T) error {
	e := &RangeError[T]{Name: name, Min: minb, Max: maxb}
	if minb != nil && maxb != nil && *minb > *maxb {
		return e
	}
	if value == nil {
		return nil
	}
	e.Value = *value
	if (minb != nil && *value < *minb) || (maxb != nil && *value > *maxb) {
		return e
	}
	return nil
}
