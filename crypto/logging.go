package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoggerHelper carries standard fields for a logging call site.
type LoggerHelper struct {
	entry *logrus.Entry
}

// NewLogger returns a helper tagged with the function and package name.
// A nil base uses the standard logger.
func NewLogger(base *logrus.Entry, pkg, function string) *LoggerHelper {
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LoggerHelper{
		entry: base.WithFields(logrus.Fields{
			"function": function,
			"package":  pkg,
		}),
	}
}

// WithField returns a helper with one extra field.
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	return &LoggerHelper{entry: l.entry.WithField(key, value)}
}

// WithFields returns a helper with extra fields.
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	return &LoggerHelper{entry: l.entry.WithFields(fields)}
}

// WithError attaches an error and a short classification.
func (l *LoggerHelper) WithError(err error, errorType string) *LoggerHelper {
	return &LoggerHelper{entry: l.entry.WithFields(logrus.Fields{
		"error":      err.Error(),
		"error_type": errorType,
	})}
}

// Entry exposes the underlying logrus entry.
func (l *LoggerHelper) Entry() *logrus.Entry { return l.entry }

func (l *LoggerHelper) Debug(message string) { l.entry.Debug(message) }
func (l *LoggerHelper) Info(message string)  { l.entry.Info(message) }
func (l *LoggerHelper) Warn(message string)  { l.entry.Warn(message) }
func (l *LoggerHelper) Error(message string) { l.entry.Error(message) }

// SecureFieldHash returns a short preview of sensitive bytes for logging:
// the first eight bytes in hex and the total size, never the full value.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		previewLen := 8
		if len(data) < previewLen {
			previewLen = len(data)
		}
		preview = fmt.Sprintf("%x", data[:previewLen])
		if len(data) > previewLen {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
