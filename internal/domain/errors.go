package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidDateFormat   = errors.New("invalid date format")
	ErrInvalidInput        = errors.New("invalid input")
)
