package models

import (
	"regexp"
	"time"
)

// SessionMaxAge is how long a login token stays valid.
const SessionMaxAge = 14 * 24 * time.Hour

var usernameRe = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

type User struct {
	ID        int       `db:"id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

func (u *User) String() string {
	if u == nil {
		return "AnonymousUser"
	}
	return u.Username
}

// ValidateUsername accepts letters, digits and @/./+/-/_ up to 150 characters.
func ValidateUsername(name string) bool {
	return usernameRe.MatchString(name)
}
