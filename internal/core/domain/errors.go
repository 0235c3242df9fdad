package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotOpen        = errors.New("job is not accepting applications")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCompanyExists     = errors.New("company already exists")
	ErrApplicationExists = errors.New("already applied to this job")
	ErrInvalidStatus     = errors.New("invalid status")
)
