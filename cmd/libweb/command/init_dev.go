// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize the library database with demo data",
	Long: `Initialize the library database with demo data for the
development environments. It works like init-prod, but also inserts
one demo user per role and a few books, and prints a bearer token for
each demo user. The JWT signing secret must be available in the
environment (or the .env file) for issuing those tokens.
` + credsRenewalMessage,
	RunE: initDev,
	Args: cobra.NoArgs,
}

func initDev(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	suc := c.NewSchemaUseCase(c.Database.NewRepos())
	uu, err := suc.InitDev(ctx)
	if err != nil {
		return fmt.Errorf("initializing DB with dev data: %w", err)
	}
	return printTokens(cmd.OutOrStdout(), c, uu)
}

func init() {
	dbCmd.AddCommand(initDevCmd)
}
