package service

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateMovie     = errors.New("a movie with this title and year already exists")
)
