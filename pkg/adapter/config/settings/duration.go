// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the value types and helpers which are
// shared by the libweb configuration sections, such as durations
// which may be written in days and range verification of settings.
package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Day is the length of the d duration unit. Loan periods are counted
// in calendar days, so DST shifts are ignored.
const Day = 24 * time.Hour

// Duration is a time.Duration which is written as text in the YAML
// files. Besides the time.ParseDuration units, a leading number of
// days is accepted too, like "14d" or "1d12h".
type Duration time.Duration

// ParseDuration parses s as a Duration.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	var days time.Duration
	if i := strings.IndexByte(s, 'd'); i >= 0 {
		n, err := strconv.ParseUint(s[:i], 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid days in %q: %w", s, err)
		}
		days, s = time.Duration(n)*Day, s[i+1:]
		if s == "" {
			return Duration(days), nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if days > 0 && d < 0 {
		return 0, fmt.Errorf("negative remainder after days: %q", s)
	}
	return Duration(days + d), nil
}

// String formats d using the days unit when it has at least one
// whole day, dropping the zero minutes and seconds.
func (d Duration) String() string {
	td := time.Duration(d)
	var sb strings.Builder
	if td >= Day {
		sb.WriteString(strconv.FormatInt(int64(td/Day), 10))
		sb.WriteByte('d')
		td %= Day
		if td == 0 {
			return sb.String()
		}
	}
	s := td.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	sb.WriteString(s)
	return sb.String()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = dd
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogValue implements slog.LogValuer.
func (d Duration) LogValue() slog.Value {
	return slog.DurationValue(time.Duration(d))
}
