package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peoplehub/hr-backend/internal/model"
)

func user(id uint64, managerID *uint64, roles ...string) *model.User {
	return &model.User{ID: id, ManagerID: managerID, Roles: roles, IsActive: true}
}

func ptr(v uint64) *uint64 { return &v }

func TestIsManagerOfIsDirectOnly(t *testing.T) {
	boss := user(1, nil, model.RoleManager)
	mid := user(2, ptr(1), model.RoleManager)
	leaf := user(3, ptr(2), model.RoleEmployee)

	assert.True(t, IsManagerOf(boss, mid))
	assert.True(t, IsManagerOf(mid, leaf))
	// No transitivity up the chain.
	assert.False(t, IsManagerOf(boss, leaf))
	assert.False(t, IsManagerOf(leaf, mid))
	assert.False(t, IsManagerOf(boss, user(4, nil)))
}

func TestCanViewSensitive(t *testing.T) {
	admin := user(1, nil, model.RoleAdmin)
	manager := user(2, nil, model.RoleManager)
	report := user(3, ptr(2), model.RoleEmployee)
	peer := user(4, ptr(2), model.RoleEmployee)

	assert.True(t, CanViewSensitive(report, report), "self")
	assert.True(t, CanViewSensitive(manager, report), "direct manager")
	assert.True(t, CanViewSensitive(admin, report), "admin")
	assert.False(t, CanViewSensitive(peer, report), "unrelated peer")
}

func TestCanDecideAbsence(t *testing.T) {
	admin := user(1, nil, model.RoleAdmin)
	manager := user(2, nil, model.RoleManager)
	owner := user(3, ptr(2), model.RoleEmployee)
	other := user(4, nil, model.RoleManager)

	assert.True(t, CanDecideAbsence(manager, owner))
	assert.True(t, CanDecideAbsence(admin, owner))
	assert.False(t, CanDecideAbsence(other, owner), "manager of someone else")
	assert.False(t, CanDecideAbsence(owner, owner), "owner cannot self-approve")
}

func TestCanDeleteUserForbidsSelf(t *testing.T) {
	admin := user(1, nil, model.RoleAdmin)
	manager := user(2, nil, model.RoleManager)
	report := user(3, ptr(2), model.RoleEmployee)

	assert.True(t, CanDeleteUser(manager, report))
	assert.True(t, CanDeleteUser(admin, report))
	// Self-deletion is off the table even for admins.
	assert.False(t, CanDeleteUser(admin, admin))
	assert.False(t, CanDeleteUser(report, report))
	assert.False(t, CanDeleteUser(report, manager))
}

func TestCanAssign(t *testing.T) {
	assert.True(t, CanAssign(user(1, nil, model.RoleManager)))
	assert.True(t, CanAssign(user(1, nil, model.RoleAdmin)))
	assert.False(t, CanAssign(user(1, nil, model.RoleEmployee)))
	assert.False(t, CanAssign(nil))
}

func TestCanEditFeedback(t *testing.T) {
	author := user(1, nil, model.RoleEmployee)
	target := user(2, ptr(3), model.RoleEmployee)
	targetsManager := user(3, nil, model.RoleManager)
	admin := user(4, nil, model.RoleAdmin)
	bystander := user(5, nil, model.RoleEmployee)
	fb := &model.Feedback{ID: 10, AuthorID: author.ID, TargetUserID: target.ID}

	assert.True(t, CanEditFeedback(author, fb, target))
	assert.True(t, CanEditFeedback(targetsManager, fb, target))
	assert.True(t, CanEditFeedback(admin, fb, target))
	assert.False(t, CanEditFeedback(bystander, fb, target))
	assert.False(t, CanEditFeedback(target, fb, target), "being the subject grants nothing")
}
