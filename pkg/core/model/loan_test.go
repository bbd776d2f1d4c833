// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/momeni/school-library/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanStatus(t *testing.T) {
	for _, s := range []model.LoanStatus{
		model.LoanStatusActive, model.LoanStatusReturned,
	} {
		require.NoError(t, s.Validate())
		text, err := s.MarshalText()
		require.NoError(t, err)
		var parsed model.LoanStatus
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, s, parsed)
	}
	assert.Equal(t, "active", model.LoanStatusActive.String())
	assert.Equal(t, "returned", model.LoanStatusReturned.String())

	assert.Equal(t, model.LoanStatusError(0), model.LoanStatusInvalid.Validate())
	_, err := model.LoanStatusInvalid.MarshalText()
	assert.Error(t, err)
	assert.Panics(t, func() { _ = model.LoanStatus(9).String() })

	s, err := model.ParseLoanStatus("lost")
	assert.Equal(t, model.LoanStatusInvalid, s)
	assert.ErrorIs(t, err, model.ErrUnknownLoanStatus)
}

func TestLoanOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l := &model.Loan{Status: model.LoanStatusActive, DueDate: now}
	assert.False(t, l.Overdue(now), "due date equal to now")
	assert.True(t, l.Overdue(now.Add(time.Nanosecond)))
	assert.False(t, l.Overdue(now.Add(-time.Hour)))
	l.Status = model.LoanStatusReturned
	assert.False(t, l.Overdue(now.Add(time.Hour)))
}

func TestAppendNote(t *testing.T) {
	assert.Equal(t, "", model.AppendNote("", ""))
	assert.Equal(t, "kept", model.AppendNote("kept", "   "))
	assert.Equal(t, "Condition: good", model.AppendNote("", " good "))
	assert.Equal(
		t, "gift copy\nCondition: water damage",
		model.AppendNote("gift copy", "water damage"),
	)
}

func TestRoles(t *testing.T) {
	r, err := model.ParseRole("librarian")
	require.NoError(t, err)
	assert.Equal(t, model.RoleLibrarian, r)
	_, err = model.ParseRole("janitor")
	assert.ErrorIs(t, err, model.ErrUnknownRole)

	for _, r := range []model.Role{
		model.RoleAdmin, model.RoleLibrarian, model.RoleManager,
	} {
		assert.True(t, model.StaffRoles.Has(r), r)
	}
	for _, r := range []model.Role{
		model.RoleTeacher, model.RoleStudent, model.RoleParent,
	} {
		assert.False(t, model.StaffRoles.Has(r), r)
		assert.True(t, model.AnyRole.Has(r), r)
	}
}
