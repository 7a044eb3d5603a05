package domain

import "errors"

var (
	ErrDesignNotFound = errors.New("design not found")
	ErrInvalidID      = errors.New("invalid identifier")

	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already in use")
	ErrInvalidPassword = errors.New("invalid credentials")
	ErrInvalidRefresh  = errors.New("invalid refresh token")
)
