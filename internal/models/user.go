package models

// RoleAdmin unlocks the sales dashboard.
const RoleAdmin = "admin"

// User is the authenticated account as reported by the upstream profile endpoint.
type User struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	ID           int64  `json:"id"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
