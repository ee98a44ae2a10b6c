/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInvalidID    = errors.New("invalid id")
	errNoStagedFile = errors.New("no staged upload in session")
)
