package models

import "time"

// User is a registered account.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserRef is the id/username pair used in member and invite listings.
type UserRef struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
