package auth

// Role is the closed set of dashboard roles. Admin is a superuser over every
// role-gated resource; the remaining roles have no hierarchy among them.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAthlete      Role = "athlete"
	RoleCollaborator Role = "collaborator"
	RolePartner      Role = "partner"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleAthlete, RoleCollaborator, RolePartner:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Permits is the single place the admin-superuser rule lives.
func (r Role) Permits(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

func (r Role) String() string { return string(r) }
