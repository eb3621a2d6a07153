package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the full account record. PasswordHash and SessionID belong to the
// auth scope and are never serialized.
type User struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	FirstName    string        `db:"fname" json:"fname"`
	LastName     string        `db:"lname" json:"lname"`
	Email        string        `db:"email" json:"email"`
	PasswordHash []byte        `db:"password" json:"-"`
	SessionID    uuid.NullUUID `db:"session_id" json:"-"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasSession reports whether sessionID is the user's current refresh session.
func (u User) HasSession(sessionID uuid.UUID) bool {
	return u.SessionID.Valid && sessionID != uuid.Nil && u.SessionID.UUID == sessionID
}
