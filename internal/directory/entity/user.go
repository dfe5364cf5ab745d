package entity

import "strings"

// User is the slice of the platform user record the notifier needs:
// identity plus the channel endpoints the directory knows about.
type User struct {
	ID       int64
	FullName string
	Email    string
	Phone    string
	Roles    []string
}

// HasRole reports whether the user carries the given role tag.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
