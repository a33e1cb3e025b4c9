package jwt

import "github.com/golang-jwt/jwt"

// Roles a session can carry.
const (
	RoleAlumni  = "alumni"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Payload defines the JWT claims of an AlumniLink session.
type Payload struct {
	// StandardClaims carries expiry, issued-at and issuer as top-level claims.
	jwt.StandardClaims

	// ID is the alumni or student id of the signed-in user. For admins it is the
	// admin email.
	ID string `json:"id"`

	// Role is one of RoleAlumni, RoleStudent or RoleAdmin.
	Role string `json:"role"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (p *Payload) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsSelfOrAdmin reports whether the session may edit the record of the given role
// and id. Ids are only unique per role, so both must match.
func (p *Payload) IsSelfOrAdmin(role, id string) bool {
	return p != nil && (p.Role == RoleAdmin || (p.Role == role && p.ID == id))
}

// ValidRole reports whether role is a known session role.
func ValidRole(role string) bool {
	switch role {
	case RoleAlumni, RoleStudent, RoleAdmin:
		return true
	}
	return false
}
