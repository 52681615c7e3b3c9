package models

import "testing"

func TestLogLevelEnabled(t *testing.T) {
	cases := []struct {
		level, min LogLevel
		want       bool
	}{
		{LogLevelInfo, LogLevelInfo, true},
		{LogLevelInfo, LogLevelWarn, false},
		{LogLevelWarn, LogLevelWarn, true},
		{LogLevelError, LogLevelWarn, true},
		{LogLevelWarn, LogLevelError, false},
	}
	for _, c := range cases {
		if got := c.level.Enabled(c.min); got != c.want {
			t.Fatalf("%s.Enabled(%s) = %v, want %v", c.level, c.min, got, c.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	if l, err := ParseLogLevel("warn"); err != nil || l != LogLevelWarn {
		t.Fatalf("expected warn, got %q, %v", l, err)
	}
	if _, err := ParseLogLevel("debug"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
