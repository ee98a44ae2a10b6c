/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import (
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Source tags a logger with the subsystem it serves.
type Source string

const (
	SourceApp        Source = "app"
	SourceWeb        Source = "web"
	SourceWebRequest Source = "web_request"
	SourceDB         Source = "db"
	SourceTracker    Source = "tracker"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger
)

// Init configures the base logger and redirects stdlib log output
// through it. The level comes from BASELINE_LOG_LEVEL when set and
// defaults to debug.
func Init() {
	initOnce.Do(func() {
		level := log.DebugLevel
		if raw := os.Getenv("BASELINE_LOG_LEVEL"); raw != "" {
			if parsed, err := log.ParseLevel(raw); err == nil {
				level = parsed
			}
		}

		baseLogger = log.NewWithOptions(os.Stdout, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339Nano,
			Level:           level,
			ReportTimestamp: true,
			Formatter:       log.LogfmtFormatter,
		})

		stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})

		stdlog.SetFlags(0)
		stdlog.SetOutput(stdLogger.Writer())
	})
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source Source) *log.Logger {
	Init()
	return baseLogger.With("source", source)
}

// StdLogger returns a stdlib logger that writes logfmt output with a source.
func StdLogger(source Source) *stdlog.Logger {
	Init()
	return baseLogger.With("source", source).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}
