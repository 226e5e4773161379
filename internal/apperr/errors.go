package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("content source unavailable")
	ErrInvalidInput = errors.New("invalid input")
)
