package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelRank = map[LogLevel]int{
	LogLevelInfo:  0,
	LogLevelWarn:  1,
	LogLevelError: 2,
}

func ParseLogLevel(s string) (LogLevel, error) {
	l := LogLevel(s)
	if _, ok := logLevelRank[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Enabled reports whether a message at level l passes the threshold min.
func (l LogLevel) Enabled(min LogLevel) bool {
	return logLevelRank[l] >= logLevelRank[min]
}

type ScrapeLog struct {
	ID        int64      `json:"id" db:"id"`
	RunID     *uuid.UUID `json:"run_id" db:"run_id"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
	Level     LogLevel   `json:"level" db:"level"`
	Message   string     `json:"message" db:"message"`
	SiteID    string     `json:"site_id" db:"site_id"`
}
