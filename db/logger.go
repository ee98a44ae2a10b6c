/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "github.com/tamsinw/baseline/logging"

var logger = logging.Logger(logging.SourceDB)
