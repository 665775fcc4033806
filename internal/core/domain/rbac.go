package domain

// Role defines a named set of permissions. The role store is the source of
// truth; the in-memory permission cache holds read-only snapshots of these.
type Role struct {
	ID          string
	Name        string
	Permissions []string
}

// DefaultRoleName is assigned to accounts created without an explicit role.
const DefaultRoleName = "user"

// Requirement expresses the permissions a route demands. A requirement with
// multiple permissions is satisfied only when the role holds every one of
// them (logical AND).
type Requirement struct {
	permissions []string
}

// RequirePermission builds a single-permission requirement.
func RequirePermission(name string) Requirement {
	return Requirement{permissions: []string{name}}
}

// RequireAll builds a requirement satisfied only when all named permissions
// are held.
func RequireAll(names ...string) Requirement {
	copied := make([]string, len(names))
	copy(copied, names)
	return Requirement{permissions: copied}
}

// Permissions returns the permission names the requirement demands.
func (r Requirement) Permissions() []string {
	return r.permissions
}

// IsEmpty reports whether the requirement demands nothing.
func (r Requirement) IsEmpty() bool {
	return len(r.permissions) == 0
}
