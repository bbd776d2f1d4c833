// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package identityuc_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/school-library/internal/test/fixture"
	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
	"github.com/momeni/school-library/pkg/core/usecase/identityuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	lib := fixture.New(t)
	iuc := lib.Identity

	c, err := iuc.Require(lib.As(lib.Librarian), model.StaffRoles)
	require.NoError(t, err)
	assert.Equal(t, &model.Caller{
		ID: lib.Librarian.ID, Name: lib.Librarian.Name,
		Role: model.RoleLibrarian,
	}, c)

	_, err = iuc.Require(lib.As(lib.Student), model.StaffRoles)
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)
	assert.ErrorIs(t, err, identityuc.ErrNotPermitted)

	_, err = iuc.Require(context.Background(), model.AnyRole)
	assert.ErrorIs(t, err, identityuc.ErrNoCaller)

	ctx := auth.WithSubject(context.Background(), uuid.New())
	_, err = iuc.Require(ctx, model.AnyRole)
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)
	assert.ErrorIs(t, err, identityuc.ErrUnknownCaller)
}

func TestResolveUnknownRole(t *testing.T) {
	lib := fixture.New(t)
	janitor := model.User{ID: uuid.New(), Name: "Jo", Role: "janitor"}
	err := lib.Pool.Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return lib.Users.Tx(tx).Create(ctx, &janitor)
		})
	})
	require.NoError(t, err)
	_, err = lib.Identity.Resolve(lib.As(janitor))
	assert.True(t, cerr.IsKind(err, cerr.KindAuthorization), "%v", err)
	assert.ErrorIs(t, err, model.ErrUnknownRole)
}

func TestCheck(t *testing.T) {
	assert.ErrorIs(t, identityuc.Check(nil, model.AnyRole), identityuc.ErrNoCaller)
	c := &model.Caller{ID: uuid.New(), Role: model.RoleParent}
	assert.NoError(t, identityuc.Check(c, model.AnyRole))
	assert.ErrorIs(t, identityuc.Check(c, model.StaffRoles), identityuc.ErrNotPermitted)
	assert.NoError(t, identityuc.Check(c, model.NewRoleSet(model.RoleParent)))
}
