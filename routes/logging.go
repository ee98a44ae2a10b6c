/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"github.com/tamsinw/baseline/logging"
)

var logger = logging.Logger(logging.SourceWeb)
