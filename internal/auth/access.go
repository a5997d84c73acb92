package auth

import "github.com/peoplehub/hr-backend/internal/model"

// Access-control predicates. All of them are pure functions over already
// resolved user records: handlers resolve the current principal's backing
// row once per request and pass it through, so evaluating a composite rule
// costs no additional lookups.

// IsSelf reports whether current and target are the same user.
func IsSelf(current, target *model.User) bool {
	return current != nil && target != nil && current.ID == target.ID
}

// IsManagerOf reports whether current is the direct manager of target.
// The check is deliberately non-transitive: a grand-report's manager chain
// does not grant access.
func IsManagerOf(current, target *model.User) bool {
	if current == nil || target == nil || target.ManagerID == nil {
		return false
	}
	return *target.ManagerID == current.ID
}

// IsAdmin reports membership of the ADMIN role.
func IsAdmin(u *model.User) bool { return u != nil && u.HasRole(model.RoleAdmin) }

// IsManager reports membership of the MANAGER role.
func IsManager(u *model.User) bool { return u != nil && u.HasRole(model.RoleManager) }

// CanViewSensitive gates access to a profile's sensitive block:
// self, direct manager, or admin.
func CanViewSensitive(current, target *model.User) bool {
	return IsSelf(current, target) || IsManagerOf(current, target) || IsAdmin(current)
}

// CanUpdateProfile mirrors CanViewSensitive: self, direct manager, or admin.
func CanUpdateProfile(current, target *model.User) bool {
	return IsSelf(current, target) || IsManagerOf(current, target) || IsAdmin(current)
}

// CanDecideAbsence gates approve/reject of an absence request owned by
// owner: direct manager of the owner, or admin.
func CanDecideAbsence(current, owner *model.User) bool {
	return IsManagerOf(current, owner) || IsAdmin(current)
}

// CanDeleteUser forbids self-deletion unconditionally, then requires
// direct manager or admin.
func CanDeleteUser(current, target *model.User) bool {
	if IsSelf(current, target) {
		return false
	}
	return IsManagerOf(current, target) || IsAdmin(current)
}

// CanAssign gates role and manager reassignment: manager or admin.
func CanAssign(current *model.User) bool {
	return IsManager(current) || IsAdmin(current)
}

// CanEditFeedback allows the author, the direct manager of the feedback
// target, or an admin.
func CanEditFeedback(current *model.User, fb *model.Feedback, target *model.User) bool {
	if current == nil || fb == nil {
		return false
	}
	if current.ID == fb.AuthorID {
		return true
	}
	return IsManagerOf(current, target) || IsAdmin(current)
}
