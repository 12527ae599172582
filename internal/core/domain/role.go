package domain

const (
	AdminRoleName  = "ADMIN_ROLE"
	ClientRoleName = "CLIENT_ROLE"
	UserRoleName   = "USER_ROLE"
)

// RoleKind is the closed set of roles the console knows how to route.
// Any role name outside the known three maps to RoleUnknown.
type RoleKind int

const (
	RoleUnknown RoleKind = iota
	RoleAdmin
	RoleClient
	RoleUser
)

func (k RoleKind) String() string {
	switch k {
	case RoleAdmin:
		return "admin"
	case RoleClient:
		return "client"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// Role is a named role as returned by the authentication service.
type Role struct {
	Name string `json:"name" bson:"name"`
}

// Kind classifies the role name.
func (r Role) Kind() RoleKind {
	switch r.Name {
	case AdminRoleName:
		return RoleAdmin
	case ClientRoleName:
		return RoleClient
	case UserRoleName:
		return RoleUser
	default:
		return RoleUnknown
	}
}
