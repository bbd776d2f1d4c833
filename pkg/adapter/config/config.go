// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the libweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory items)
// and a series of functional options (for the optional items), so the
// use cases layer does not depend on the configuration file format.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/momeni/school-library/pkg/adapter/config/settings"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is implemented
// with primitive fields or locally defined structs, so the file format
// may stay intact while other layers change freely.
type Config struct {
	Database Database // database driver and connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Auth     Auth     // bearer tokens settings
	Logging  Logging  `yaml:"log"`
	Usecases Usecases // Configuration settings for supported use cases

	// Versions contains the configuration file and database schema
	// versions. The database version is only checked for the postgres
	// driver.
	Versions Versions `yaml:"versions"`
}

// Versions contains the configuration file and database schema
// versions which are used for detecting their relevant formats.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Load reads the path configuration file and parses it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return c, nil
}

// Parse unmarshals the data byte slice as a Config instance, rejecting
// unknown settings, and then validates and normalizes it. Missing
// optional settings take their default values.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	c := &Config{}
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty configuration")
		}
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if v := c.Versions.Config; !Version.Supports(v) {
		return fmt.Errorf(
			"config version: %w",
			&cerr.MismatchingSemVerError{Expected: Version, Actual: v},
		)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if v := c.Versions.Database; c.Database.Driver == DriverPostgres &&
		!postgres.Version.Supports(v) {
		return fmt.Errorf(
			"database schema version: %w",
			&cerr.MismatchingSemVerError{
				Expected: postgres.Version, Actual: v,
			},
		)
	}
	if err := c.Gin.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating gin settings: %w", err)
	}
	if err := c.Auth.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating auth settings: %w", err)
	}
	if err := c.Logging.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating log settings: %w", err)
	}
	circ := &c.Usecases.Circulation
	if err := settings.VerifyRange(
		"default loan period",
		circ.DefaultLoanPeriod,
		circ.MinDefaultLoanPeriod,
		circ.MaxDefaultLoanPeriod,
	); err != nil {
		return fmt.Errorf("validating circulation settings: %w", err)
	}
	if p := circ.DefaultLoanPeriod; p != nil && *p <= 0 {
		return fmt.Errorf("default loan period is not positive: %v", *p)
	}
	return nil
}
