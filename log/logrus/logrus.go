// Package logrus adapts a *logrus.Entry to railcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/railcache"
)

var _ railcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New returns an adapter around l, or around the standard logger if l is nil.
func New(l *logrus.Logger) LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return LogrusLogger{E: logrus.NewEntry(l)}
}

func (l LogrusLogger) Debug(msg string, f railcache.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f railcache.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f railcache.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f railcache.Fields) { l.entry(f).Error(msg) }

func (l LogrusLogger) entry(f railcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}
