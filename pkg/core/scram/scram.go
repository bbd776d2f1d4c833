// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram declares the password hashing port which is needed
// while the database roles of libweb are created or their passwords
// are renewed (see the schemauc package). The SCRAM implementation
// lives in the adapter layer.
//
// Only the verifier string of a password is computed here. The SCRAM
// conversations between clients and servers are handled by PostgreSQL
// and its driver, so no conversation interface is declared.
package scram

// Hasher computes SCRAM verifiers for one underlying hash function,
// such as SHA-256.
type Hasher interface {
	// Hash returns the verifier of pass in the format which is
	// accepted by PostgreSQL for CREATE/ALTER ROLE ... PASSWORD:
	//
	//	SCRAM-SHA-256$<iters>:<b64-salt>$<b64-storedKey>:<b64-serverKey>
	//
	// so the plaintext password never appears in the DDL statements
	// (nor in their logs). The pass must be non-empty and is normalized
	// by SASLprep. The salt is base64 encoded and a random salt is used
	// if it is empty. The iters must be at least 4096.
	Hash(pass, salt string, iters int) (string, error)
}
