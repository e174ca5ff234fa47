// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import "errors"

var (
	// ErrIO marks filesystem failures while reading inputs or writing the
	// output tree.
	ErrIO = errors.New("i/o error")

	// ErrValidation marks invalid configuration or an invalid claim schema.
	ErrValidation = errors.New("validation error")
)
