// Package session implements role-partitioned persistence of authentication
// state. A patient, a doctor and an admin can be signed in at the same time
// on one machine: each role owns its own slice of the key-value store, and
// signing one role out leaves the others untouched.
package session

import "strings"

// Role partitions sessions. It is always stored and compared in its
// upper-case canonical form, whatever casing the server used.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// RoleAny selects the no-role lookup path: roles are searched in
// RolePriority order, then the legacy unscoped keys.
const RoleAny Role = ""

// RolePriority is the fixed search order used by CurrentUser and Token when
// no role is supplied. Callers depend on ADMIN winning over DOCTOR winning
// over PATIENT; do not reorder.
var RolePriority = []Role{RoleAdmin, RoleDoctor, RolePatient}

// Normalize returns the canonical upper-case form of the role.
func (r Role) Normalize() Role {
	return Role(strings.ToUpper(strings.TrimSpace(string(r))))
}

// IsValid reports whether the role is one of the three known roles after
// normalization.
func (r Role) IsValid() bool {
	switch r.Normalize() {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Session is one authenticated identity for one role. The token fields are
// persisted under their own keys and never serialized as part of the user
// record.
type Session struct {
	UserID       string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	FullName     string `json:"fullName"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}
