package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionMismatch is returned when a session id compare-and-swap finds a
	// different stored value than the caller expected.
	ErrSessionMismatch = errors.New("session id mismatch")
)
