package ballot

import "errors"

var (
	ErrQuotaReached       = errors.New("category is full")
	ErrUnknownStartup     = errors.New("unknown startup")
	ErrInvalidCategory    = errors.New("invalid vote category")
	ErrNotSubmittable     = errors.New("ballot is not submittable")
	ErrQuotaExceedsRoster = errors.New("category targets do not fit the roster")
)
