package auth

import (
	"errors"
	"strings"
	"time"
)

// ErrUsernameTaken reports a registration for a username already in use.
var ErrUsernameTaken = errors.New("auth: username taken")

// Default admin seeded into an empty users table.
const (
	DefaultAdminUsername  = "admin"
	DefaultAdminPassword  = "password123"
	DefaultAdminFirstName = "Default"
	DefaultAdminLastName  = "Admin"
)

// User represents a staff account.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// FullName is the display name stamped into audit columns.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Registration is the sign-up form.
type Registration struct {
	FirstName       string `validate:"required,max=50"`
	LastName        string `validate:"required,max=50"`
	Username        string `validate:"required,max=50"`
	Password        string `validate:"required,min=6,max=72"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

func (r Registration) trimmed() Registration {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Username = strings.TrimSpace(r.Username)
	return r
}
