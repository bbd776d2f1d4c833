// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package identityuc contains the identity UseCase which resolves the
// authenticated subject of a request into a Caller (by looking up the
// users directory) and checks the caller role against the allowed
// roles of each operation. All role checks of the libweb go through
// the Require method (or the Check function), so the allowed role
// sets are declared next to the operations instead of being spread
// as if-statements.
package identityuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/school-library/pkg/core/auth"
	"github.com/momeni/school-library/pkg/core/cerr"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/momeni/school-library/pkg/core/repo"
)

// These errors are wrapped by cerr.Authorization and returned when
// a caller may not be resolved or is not permitted.
var (
	ErrNoCaller      = errors.New("no authenticated caller")
	ErrUnknownCaller = errors.New("caller is not a known user")
	ErrNotPermitted  = errors.New("not permitted")
)

// UseCase represents the identity use case. It holds a database
// connection pool and the users repository.
type UseCase struct {
	pool    repo.Pool
	usersrp repo.Users
}

// New instantiates an identity use case.
func New(p repo.Pool, u repo.Users) *UseCase {
	return &UseCase{pool: p, usersrp: u}
}

// Resolve finds the caller whose subject is carried by ctx.
// A missing subject, a subject with no user record, or a user with
// an unknown role is reported as a cerr.Authorization error.
func (iuc *UseCase) Resolve(ctx context.Context) (*model.Caller, error) {
	sub, ok := auth.Subject(ctx)
	if !ok {
		return nil, cerr.Authorization(ErrNoCaller)
	}
	var u *model.User
	err := iuc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (
		err error,
	) {
		u, err = iuc.usersrp.Conn(c).Get(ctx, sub)
		return err
	})
	switch {
	case cerr.IsKind(err, cerr.KindNotFound):
		return nil, cerr.Authorization(
			fmt.Errorf("subject %s: %w", sub, ErrUnknownCaller),
		)
	case err != nil:
		return nil, fmt.Errorf("loading user %s: %w", sub, err)
	}
	role, err := model.ParseRole(string(u.Role))
	if err != nil {
		return nil, cerr.Authorization(
			fmt.Errorf("user %s role %q: %w", sub, u.Role, err),
		)
	}
	return &model.Caller{ID: u.ID, Name: u.Name, Role: role}, nil
}

// Require resolves the caller and checks that its role belongs to the
// allowed role set. It implements the auth.Authorizer interface.
func (iuc *UseCase) Require(
	ctx context.Context, allowed model.RoleSet,
) (*model.Caller, error) {
	c, err := iuc.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err = Check(c, allowed); err != nil {
		log.Debug(
			ctx, "rejected caller",
			log.ID("caller", c.ID),
			slog.String("role", string(c.Role)),
		)
		return nil, err
	}
	return c, nil
}

// Check is the capability check. It returns a cerr.Authorization
// error if c is nil or its role is not in the allowed set.
func Check(c *model.Caller, allowed model.RoleSet) error {
	if c == nil {
		return cerr.Authorization(ErrNoCaller)
	}
	if !allowed.Has(c.Role) {
		return cerr.Authorization(
			fmt.Errorf("role %q: %w", c.Role, ErrNotPermitted),
		)
	}
	return nil
}
