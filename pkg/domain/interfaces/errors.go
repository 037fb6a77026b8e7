package interfaces

import "errors"

// Sentinel errors shared by every repository and identity directory implementation
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
