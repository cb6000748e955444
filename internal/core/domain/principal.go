package domain

// Principal is an already-authenticated caller. The zero value is the
// anonymous caller: it has no id and no role.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) Anonymous() bool {
	return p.ID == ""
}

func (p Principal) Privileged() bool {
	return !p.Anonymous() && p.Role == RolePrivileged
}
