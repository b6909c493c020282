package model

import (
	"time"
	"unicode"
)

// Role is a user's permission tier.
type Role string

// Role constants.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// User is a known account. Users are immutable once created.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Role      Role      `json:"role" yaml:"role"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Initial returns the upper-cased first letter of the user's name, or "U".
func (u User) Initial() string {
	for _, r := range u.Name {
		return string(unicode.ToUpper(r))
	}
	return "U"
}

// Session is the current authentication state.
type Session struct {
	User            *User  `json:"user,omitempty"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Anonymous reports whether no user is signed in.
func (s Session) Anonymous() bool {
	return !s.IsAuthenticated || s.User == nil
}
