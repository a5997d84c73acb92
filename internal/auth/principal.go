package auth

import "strings"

// AuthorityPrefix is prepended to role names when they are issued as
// granted authorities, e.g. MANAGER -> ROLE_MANAGER.
const AuthorityPrefix = "ROLE_"

// Principal is the authenticated identity attached to one request. It is
// immutable after construction: roles are resolved at token issue time and
// never recomputed, so it can be shared freely across middleware and
// handlers without locking.
type Principal struct {
	UserID      uint64
	Email       string
	Authorities []string
}

// Anonymous reports whether the principal is the zero value, i.e. the
// request carried no valid access token.
func (p Principal) Anonymous() bool { return p.Email == "" }

// HasAuthority reports whether the principal was granted the authority
// string, e.g. "ROLE_ADMIN".
func (p Principal) HasAuthority(a string) bool {
	for _, g := range p.Authorities {
		if g == a {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the given
// bare role names (without the ROLE_ prefix).
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasAuthority(Authority(r)) {
			return true
		}
	}
	return false
}

// Authority maps a bare role name to its granted-authority form.
func Authority(role string) string { return AuthorityPrefix + role }

// RoleName strips the authority prefix, returning the bare role name.
func RoleName(authority string) string {
	return strings.TrimPrefix(authority, AuthorityPrefix)
}

// Authorities maps a role-name set to granted-authority strings.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, Authority(r))
	}
	return out
}
