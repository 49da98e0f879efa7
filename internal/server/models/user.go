// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account identified by a unique email. Never deleted in the
// current scope; only the credential can change.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
