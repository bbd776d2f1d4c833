// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo contains the repository ports of the use cases layer.
// A use case acquires a Conn from a Pool (and optionally begins a Tx
// on it) and passes that Conn or Tx to a repository, e.g., Books, in
// order to obtain a queryer which runs the relevant queries on it.
// Implementations are provided by the adapters layer, such as the
// pkg/adapter/db/postgres and pkg/adapter/db/memdb packages.
package repo

import "context"

// ConnHandler is called with an acquired connection. The connection
// is released as soon as the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool represents a database connection pool.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
	Close() error
}
