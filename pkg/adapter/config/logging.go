// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/momeni/school-library/pkg/core/log"
)

// Logging contains the structured logging settings.
type Logging struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, or error
	Format string `yaml:"format,omitempty"` // text or json

	level slog.Level `yaml:"-"`
}

// Apply makes the default logger to write into w as configured.
func (l Logging) Apply(w io.Writer) error {
	return log.Configure(w, l.level, l.Format)
}

// ValidateAndNormalize fills the default info level and text format.
func (l *Logging) ValidateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	l.level = lvl
	switch l.Format {
	case "":
		l.Format = log.FormatText
	case log.FormatText, log.FormatJSON:
	default:
		return fmt.Errorf("unknown log format: %q", l.Format)
	}
	return nil
}
