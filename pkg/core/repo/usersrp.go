// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/model"
)

// UsersConnQueryer reads the users directory on a connection.
type UsersConnQueryer interface {
	UsersQueryer
}

// UsersTxQueryer manages the users directory within a transaction.
type UsersTxQueryer interface {
	UsersQueryer
	Create(ctx context.Context, u *model.User) error
}

// UsersQueryer reads the users directory.
type UsersQueryer interface {
	// Get returns the userID user or a cerr.NotFound error.
	Get(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

// Users is the users directory repository.
type Users interface {
	Conn(Conn) UsersConnQueryer
	Tx(Tx) UsersTxQueryer
}
