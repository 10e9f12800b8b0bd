// Package logrus adapts logrus to encstore.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/encstore"
)

var _ encstore.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l, tagging every entry with component=encstore. A nil l uses
// logrus.StandardLogger().
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "encstore")}
}

func (l Logger) Debug(msg string, f encstore.Fields) { l.entry(f).Debug(msg) }
func (l Logger) Info(msg string, f encstore.Fields)  { l.entry(f).Info(msg) }
func (l Logger) Warn(msg string, f encstore.Fields)  { l.entry(f).Warn(msg) }
func (l Logger) Error(msg string, f encstore.Fields) { l.entry(f).Error(msg) }

func (l Logger) entry(f encstore.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	if err, ok := f["err"].(error); ok {
		rest := make(logrus.Fields, len(f)-1)
		for k, v := range f {
			if k != "err" {
				rest[k] = v
			}
		}
		return l.E.WithError(err).WithFields(rest)
	}
	return l.E.WithFields(logrus.Fields(f))
}
