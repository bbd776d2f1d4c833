// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used. Both of them need the postgres
driver because the memory driver is initialized on each start up.`,
}

const credsRenewalMessage = `
The admin role password is read from the .pgpass file in the pass-dir
directory (as configured in the database section). New passwords are
generated for the admin and normal roles and written to .pgpass.new in
the same directory before they are changed in the database. After the
database transaction commits, .pgpass.new is moved over .pgpass. If
the process is interrupted in between, the next connection attempt
tries .pgpass.new too.`

func init() {
	rootCmd.AddCommand(dbCmd)
}
