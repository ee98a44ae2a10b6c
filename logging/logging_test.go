package logging

import "testing"

func TestLoggerInitializers(t *testing.T) {
	t.Parallel()

	Init()
	if l := Logger(SourceTracker); l == nil {
		t.Fatal("Logger returned nil")
	}
	if l := StdLogger(SourceWebRequest); l == nil {
		t.Fatal("StdLogger returned nil")
	}
}
