package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsenceType(t *testing.T) {
	got, err := ParseAbsenceType("  vacation ")
	require.NoError(t, err)
	assert.Equal(t, AbsenceVacation, got)

	_, err = ParseAbsenceType("sabbatical")
	assert.Error(t, err)
}

func TestParseAbsenceStatus(t *testing.T) {
	got, err := ParseAbsenceStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, AbsenceApproved, got)

	_, err = ParseAbsenceStatus("MAYBE")
	assert.Error(t, err)
}

func TestUserHasRole(t *testing.T) {
	u := User{Roles: []string{RoleEmployee, RoleManager}}
	assert.True(t, u.HasRole(RoleManager))
	assert.False(t, u.HasRole(RoleAdmin))

	var empty User
	assert.False(t, empty.HasRole(RoleEmployee))
}
