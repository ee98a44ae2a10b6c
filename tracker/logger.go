/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import "github.com/tamsinw/baseline/logging"

var logger = logging.Logger(logging.SourceTracker)
