package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoDriversAvailable = errors.New("no driver available for this date")
	ErrExternalService    = errors.New("external service failure")
)
