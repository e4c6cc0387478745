package account

import "errors"

// Domain errors surfaced to the HTTP layer, which maps them to the exact
// status/message pairs the API has always returned.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrRequestNotFound    = errors.New("request not found")
	ErrAlreadyApproved    = errors.New("request already approved")
)
