// Package models holds the server-side data model.
package models

import "time"

// Account is a registered user's durable identity record. ID, Username and
// Email never change after creation; PasswordHash is produced only by the
// password hasher and must never be logged or serialized to clients.
type Account struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}
