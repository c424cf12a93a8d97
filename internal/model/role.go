package model

// Role is a member's permission level on a project. It is a closed set:
// every membership row holds exactly one of the three values below.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole maps a wire string onto the closed Role set.
// Returns false for anything outside {owner, admin, member}.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), true
	}
	return "", false
}

// removalRights is the capability table for membership removal.
// It is intentionally a plain data structure rather than rank comparisons:
// the rights are not a total order (an owner may remove an admin, but no one
// may remove an owner — not even another owner, since each project has
// exactly one).
var removalRights = map[Role]map[Role]bool{
	RoleOwner:  {RoleAdmin: true, RoleMember: true},
	RoleAdmin:  {RoleMember: true},
	RoleMember: {},
}

// CanRemove reports whether a member with role r may remove a member with
// the target role. Self-removal is rejected separately by the service; this
// table only answers the rank question.
func (r Role) CanRemove(target Role) bool {
	return removalRights[r][target]
}

// CanManageProject reports whether the role may update project metadata and
// add members.
func (r Role) CanManageProject() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanManageSnippets reports whether the role may edit or delete project
// snippets created by someone else. Snippet owners always manage their own.
func (r Role) CanManageSnippets() bool {
	return r == RoleOwner || r == RoleAdmin
}

// In reports whether r is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
