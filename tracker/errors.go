/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */

// Package tracker implements the biomarker tracking rules on top of the
// database layer: input validation, reading capture, reference range
// evaluation, CSV transfer and backup orchestration.
package tracker

import "errors"

// ValidationError carries a message meant to be shown to the user
// exactly as written. It wraps the underlying cause when one exists.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validationErr(message string) error {
	return &ValidationError{Message: message}
}

func validationWrap(message string, err error) error {
	return &ValidationError{Message: message, Err: err}
}

// IsValidationError reports whether err carries a user-facing
// validation message.
func IsValidationError(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}
