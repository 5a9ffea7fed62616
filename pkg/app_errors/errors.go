package apperrors

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidCategory     = errors.New("invalid category, expected a positive integer")
	ErrInternalServerError = errors.New("internal server error")
)
