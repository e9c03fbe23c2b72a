package dto

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrDuplicateVoter  = errors.New("this name has already voted")
	ErrPersistence     = errors.New("persistence failure")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInternalFailure = errors.New("internal failure")
)
