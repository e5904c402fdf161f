package services

import "errors"

var (
	// ErrValidation rejects an operation before anything is written.
	ErrValidation = errors.New("validation failed")
	// ErrRecordNotFound means no inventory record exists where one was required.
	ErrRecordNotFound = errors.New("inventory record not found")
	// ErrDuplicateRecord means an inventory record already exists for the key.
	ErrDuplicateRecord = errors.New("inventory record already exists")
	// ErrInsufficientStock means a decrease exceeds the on-hand quantity.
	// Nothing is partially applied.
	ErrInsufficientStock = errors.New("insufficient stock")
)
