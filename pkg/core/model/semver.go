// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a major.minor.patch semantic version. It versions the
// configuration file format and the database schema, so a libweb
// binary may refuse the files or databases which it does not know.
type SemVer [3]uint

// ParseSemVer parses a major.minor.patch string.
func ParseSemVer(s string) (SemVer, error) {
	var sv SemVer
	parts := strings.Split(s, ".")
	if len(parts) != len(sv) {
		return sv, fmt.Errorf("version %q: want major.minor.patch", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return SemVer{}, fmt.Errorf("version %q: %w", s, err)
		}
		sv[i] = uint(n)
	}
	return sv, nil
}

// Major returns the major component of sv.
func (sv SemVer) Major() uint {
	return sv[0]
}

// Supports reports whether a program which implements sv may read
// the other version, i.e., they have the same major version and other
// has no newer minor version.
func (sv SemVer) Supports(other SemVer) bool {
	return sv[0] == other[0] && other[1] <= sv[1]
}

func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}

// MarshalText implements encoding.TextMarshaler.
func (sv SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The sv is left
// unchanged on errors.
func (sv *SemVer) UnmarshalText(text []byte) error {
	v, err := ParseSemVer(string(text))
	if err != nil {
		return err
	}
	*sv = v
	return nil
}
