package domain

import "errors"

var (
	// Internal causes. Never surfaced to clients as-is.
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrInvalidToken     = errors.New("invalid token")
	ErrSuperseded       = errors.New("token superseded")

	// Outward signals.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("invalid session")

	ErrUserExists = errors.New("user already exists")
)
