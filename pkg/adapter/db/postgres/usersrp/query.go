// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/school-library/pkg/adapter/db/postgres"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
)

// ErrUserNotFound is wrapped by a cerr.NotFound error when a user
// record is missing.
var ErrUserNotFound = errors.New("user not found")

type gUser struct {
	ID   uuid.UUID `gorm:"primaryKey;type:uuid"`
	Name string
	Role string
}

func (gu *gUser) TableName() string {
	return "users"
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, userID uuid.UUID,
) (*model.User, error) {
	var gus []gUser
	err := q.GORM(ctx).Where("id = ?", userID).Limit(1).Find(&gus).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gus) == 0 {
		return nil, cerr.NotFound(ErrUserNotFound)
	}
	gu := gus[0]
	return &model.User{ID: gu.ID, Name: gu.Name, Role: model.Role(gu.Role)}, nil
}

func Create(ctx context.Context, tx *postgres.Tx, u *model.User) error {
	gu := &gUser{ID: u.ID, Name: u.Name, Role: string(u.Role)}
	err := tx.GORM(ctx).Create(gu).Error
	switch {
	case postgres.HasCode(err, postgres.UniqueViolation):
		return cerr.Conflict(fmt.Errorf("user %s exists: %w", u.ID, err))
	case err != nil:
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
