// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx represents a database transaction. It may not be used
// concurrently. Statements of one Tx are applied all together or not
// at all. A READ-COMMITTED isolation level is expected, so the
// circulation use cases lock the rows which they are going to check
// and modify (see BooksTxQueryer.GetForUpdate) instead of relying on
// the isolation level. For details, read
// https://www.postgresql.org/docs/current/transaction-iso.html#XACT-READ-COMMITTED
type Tx interface {
	Queryer

	// IsTx method prevents a non-Tx object (such as a Conn) to
	// mistakenly implement the Tx interface.
	IsTx()
}
