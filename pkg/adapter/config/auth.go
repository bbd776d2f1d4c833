// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/momeni/school-library/pkg/adapter/auth/jwtauth"
	"github.com/momeni/school-library/pkg/adapter/config/settings"
)

// Auth contains the bearer tokens settings. The signing secret is not
// kept in the configuration file. It is read from the SecretEnv
// environment variable instead (which may be set in a .env file).
type Auth struct {
	Issuer    string             `yaml:"issuer,omitempty"`
	SecretEnv string             `yaml:"secret-env,omitempty"`
	TokenTTL  *settings.Duration `yaml:"token-ttl,omitempty"`
}

// NewAuthenticator instantiates a token authenticator using the secret
// which is found in the a.SecretEnv environment variable.
func (a Auth) NewAuthenticator() (*jwtauth.Authenticator, error) {
	ja, err := jwtauth.New(os.Getenv(a.SecretEnv), a.Issuer)
	if err != nil {
		return nil, fmt.Errorf("checking $%s: %w", a.SecretEnv, err)
	}
	return ja, nil
}

// TTL returns the lifetime of the issued tokens.
func (a Auth) TTL() time.Duration {
	return time.Duration(*a.TokenTTL)
}

// ValidateAndNormalize fills the missing auth settings by their
// default values.
func (a *Auth) ValidateAndNormalize() error {
	if a.Issuer == "" {
		a.Issuer = "libweb"
	}
	if a.SecretEnv == "" {
		a.SecretEnv = "LIBWEB_JWT_SECRET"
	}
	settings.Default(&a.TokenTTL, settings.Duration(12*time.Hour))
	if *a.TokenTTL <= 0 {
		return fmt.Errorf("token ttl is not positive: %v", *a.TokenTTL)
	}
	return nil
}
