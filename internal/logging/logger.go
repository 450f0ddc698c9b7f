// Package logging builds the logrus logger used by the command line tool.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// ParseLevel maps a level name to a logrus level. Supported values are
// "trace", "debug", "info", "warn", "error" (case-insensitive). Unknown
// values default to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New creates a leveled text logger writing to w.
func New(level string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(ParseLevel(level))
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return log
}

// Progress is an observer that logs every interval-th sample at debug level.
type Progress struct {
	log      logrus.FieldLogger
	interval int
}

func NewProgress(log logrus.FieldLogger, interval int) *Progress {
	if interval <= 0 {
		interval = 1000
	}
	return &Progress{log: log, interval: interval}
}

func (p *Progress) OnStep(step int, t float64, x dynamo.State) {
	if step%p.interval != 0 {
		return
	}
	p.log.WithFields(logrus.Fields{
		"step":   step,
		"t":      t,
		"theta1": x[dynamo.Theta1],
		"theta2": x[dynamo.Theta2],
	}).Debug("progress")
}
