package types

// AdminRole is the role value that grants access to article management.
const AdminRole = "admin"

// User represents an entry of the credential document.
// Users are provisioned out-of-band; the server only reads them.
type User struct {
	// Username is the unique login name.
	Username string `json:"username" yaml:"username"`

	// Password is the stored secret. It is either plaintext or a bcrypt hash.
	// It is never exposed in API responses.
	Password string `json:"password" yaml:"password"`

	// Role indicates the user's authorization level (e.g., "admin").
	Role string `json:"role" yaml:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == AdminRole
}

// UserList is the layout of the credential document.
type UserList struct {
	Users []User `json:"users" yaml:"users"`
}
