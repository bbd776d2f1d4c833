// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

var errUserNotFound = errors.New("user not found")

// Users implements the repo.Users interface.
type Users struct {
}

// NewUsers instantiates the users repository.
func NewUsers() *Users {
	return &Users{}
}

type usersQueryer struct {
	queryer
}

func (users *Users) Conn(c repo.Conn) repo.UsersConnQueryer {
	return usersQueryer{connQueryer(c)}
}

func (users *Users) Tx(tx repo.Tx) repo.UsersTxQueryer {
	return usersQueryer{txQueryer(tx)}
}

func (q usersQueryer) Get(
	_ context.Context, userID uuid.UUID,
) (u *model.User, err error) {
	err = q.run(func(s *Store) error {
		uu, ok := s.users[userID]
		if !ok {
			return cerr.NotFound(errUserNotFound)
		}
		u = &uu
		return nil
	})
	return u, err
}

func (q usersQueryer) Create(_ context.Context, u *model.User) error {
	return q.run(func(s *Store) error {
		if _, ok := s.users[u.ID]; ok {
			return cerr.Conflict(fmt.Errorf("user %s exists", u.ID))
		}
		s.users[u.ID] = *u
		return nil
	})
}
