// Package apperr defines the error kinds surfaced across package boundaries.
package apperr

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrUnreadable           = errors.New("unreadable file")
	ErrInvalidPath          = errors.New("invalid path")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrIndexDisabled        = errors.New("index disabled")
)
