package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EncodingConsole = "console"
	EncodingJSON    = "json"
)

// Prm groups Logger's parameters.
// Successful passing non-nil parameters to the NewLogger (if returned
// error is nil) guarantees that they are immutable within the Logger.
type Prm struct {
	level     zapcore.Level
	encoding  string
	timestamp bool
}

// SetLevelString sets the minimum logging level. Default is "info".
//
// Returns an error if s is not a string representation of a
// supporting logging level.
//
// Supports the following levels:
//   - "debug"
//   - "info"
//   - "warn"
//   - "error"
func (p *Prm) SetLevelString(s string) error {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return err
	}

	switch lvl {
	case zap.DebugLevel, zap.InfoLevel, zap.WarnLevel, zap.ErrorLevel:
	default:
		return fmt.Errorf("unsupported logging level %s", s)
	}

	p.level = lvl

	return nil
}

// SetEncoding sets output format, "console" (default) or "json".
func (p *Prm) SetEncoding(s string) error {
	switch s {
	case "", EncodingConsole, EncodingJSON:
		p.encoding = s
		return nil
	default:
		return fmt.Errorf("unsupported logging encoding %s", s)
	}
}

// SetTimestamp enables timestamps in log records.
func (p *Prm) SetTimestamp(v bool) {
	p.timestamp = v
}

// NewLogger constructs a new zap logger instance writing to stderr.
// Nil prm is equivalent to zero one.
func NewLogger(prm *Prm) (*zap.Logger, error) {
	if prm == nil {
		prm = new(Prm)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(prm.level)
	c.Sampling = nil
	c.Encoding = EncodingConsole
	if prm.encoding != "" {
		c.Encoding = prm.encoding
	}

	if prm.timestamp {
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		c.EncoderConfig.EncodeTime = func(_ time.Time, _ zapcore.PrimitiveArrayEncoder) {}
	}

	return c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
}
