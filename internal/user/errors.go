package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInUse          = errors.New("user still owns products or orders")
	ErrEmptyPassword      = errors.New("password cannot be empty")
)
