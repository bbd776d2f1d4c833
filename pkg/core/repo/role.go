// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role names a database login role. It is unrelated to model.Role
// which is the role of a school member. A connection pool is created
// for exactly one database Role and inherits its privileges.
// The passwords of these roles are kept in the .pgpass file of the
// configured pass-dir.
type Role string

// Database roles which are known by the libweb.
const (
	// AdminRole is a super user which must be created manually.
	// It is only used by the db init-dev and init-prod commands in
	// order to create the NormalRole, the library tables, and grant
	// the NormalRole its privileges.
	AdminRole Role = "admin"

	// NormalRole is an unprivileged role which reads and writes the
	// library tables while serving the REST APIs.
	NormalRole Role = "libweb"
)
