package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyInProgress  = errors.New("a resolution job for this owner is already in progress")
	ErrEmptyItemList      = errors.New("item list is empty")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
