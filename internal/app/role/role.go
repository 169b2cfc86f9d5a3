package role

// Role is the console access level carried in JWT claims.
type Role int

const (
	Client Role = iota
	Partner
	Admin
)

func (r Role) String() string {
	switch r {
	case Client:
		return "client"
	case Partner:
		return "partner"
	case Admin:
		return "admin"
	}
	return "unknown"
}
