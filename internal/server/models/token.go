package models

import "time"

// AuthToken is an opaque token bound one-to-one to a user. It carries no
// embedded meaning and is valid only via server-side lookup.
type AuthToken struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}
