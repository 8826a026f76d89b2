package models

// User is a signed-in identity recorded by the role service.
// It maps to the `users` table in SQLite.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	Username string `db:"username" json:"username"` // local part of Email
	Role     string `db:"role" json:"role"`
	LastSeen string `db:"last_seen" json:"last_seen"`
}
