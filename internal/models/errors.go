package models

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyText      = errors.New("text must be between 1 and 200 characters")
	ErrEndBeforePub   = errors.New("end date is before the publish date")
	ErrTooFewChoices  = errors.New("a question needs at least two choices")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrWeakPasswd     = errors.New("weak password")
	ErrBadCredentials = errors.New("bad credentials")
)
