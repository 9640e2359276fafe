package entity

import "errors"

var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrValidation            = errors.New("validation error")
	ErrUserNotFound          = errors.New("user not found")
	ErrLimitReached          = errors.New("daily swipe limit reached")
	ErrAlreadyExists         = errors.New("already exists")
	ErrAlreadySwiped         = errors.New("already swiped this profile")
	ErrNoSuperlikesAvailable = errors.New("no superlikes available")
	ErrInvalidSignature      = errors.New("invalid payment signature")
	ErrInternal              = errors.New("internal error")
)
