package services

import "errors"

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrGroupNameConflict = errors.New("group name is already in use")
	ErrTeamNameConflict  = errors.New("team name is already in use")

	// ErrResultLocked is returned when a result is submitted for a match whose
	// stage has already been left behind.
	ErrResultLocked = errors.New("match result can no longer be changed")

	ErrAuthInvalidCredentials = errors.New("invalid operator credentials")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrOperatorDisabled       = errors.New("operator login is not configured")
)
