// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathresolver

import (
	"errors"
	"fmt"
)

var (
	// ErrBinaryNotFound is wrapped by NotFoundError.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrEmptyName is returned when FindBinary is called without a name.
	ErrEmptyName = errors.New("binary name is empty")
	// ErrInvalidRoot is returned by New when the search root cannot be made absolute.
	ErrInvalidRoot = errors.New("invalid search root")
)

// NotFoundError names the binaries that could not be located.
type NotFoundError struct {
	Names []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("%s: %s", ErrBinaryNotFound, e.Names[0])
	}

	return fmt.Sprintf("%s: none of %v", ErrBinaryNotFound, e.Names)
}

// Unwrap returns ErrBinaryNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrBinaryNotFound
}
