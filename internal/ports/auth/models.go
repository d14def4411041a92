package auth

// Role names are fixed; there is no role management UI.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the identity carried by a session cookie.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
