package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("record is already terminal")
	ErrValidation        = errors.New("generated result failed validation")
	ErrCancelled         = errors.New("cancelled by operator")
)
