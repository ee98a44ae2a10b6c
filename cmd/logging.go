/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "github.com/tamsinw/baseline/logging"

var appLogger = logging.Logger(logging.SourceApp)
var requestStdLogger = logging.StdLogger(logging.SourceWebRequest)
