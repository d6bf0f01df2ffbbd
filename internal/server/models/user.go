// Package models defines the persistent entities of the authentication
// service.
package models

import "time"

// User is an identity record. Usernames are unique; the password is stored
// only as a bcrypt hash.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
