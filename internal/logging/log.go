// Package logging adds logging utilities.
package logging

import (
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
)

// New returns a text logger with full RFC3339 timestamps at the given level.
// Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	logger.SetFormatter(formatter)
	logger.SetLevel(ParseLevel(level))
	return logger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// QueryFields flattens device query parameters into log fields.
func QueryFields(q url.Values) logrus.Fields {
	f := make(logrus.Fields, len(q))
	for k, v := range q {
		f["q_"+k] = strings.Join(v, ",")
	}
	return f
}

func BatchFields(b types.Batch) logrus.Fields {
	return logrus.Fields{
		"batch_id": b.ID,
		"sn":       b.DeviceSerial,
		"records":  len(b.Records),
	}
}
