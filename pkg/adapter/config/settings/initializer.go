// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

// Nil2Zero allocates a zero value for *t if it is nil.
func Nil2Zero[T any](t **T) {
	if *t == nil {
		*t = new(T)
	}
}

// Default points *t to a copy of def if it is nil.
func Default[T any](t **T, def T) {
	if *t == nil {
		*t = &def
	}
}
