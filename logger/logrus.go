package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/opsarena/meterage/config"
)

// LogrusLogger sends all logs to stderr using the logrus package for
// formatting. It is the production implementation; SetLevel may be called
// before or after Start.
type LogrusLogger struct {
	Config *config.Config `inject:""`

	logger *logrus.Logger
	level  *logrus.Level
}

var _ Logger = (*LogrusLogger)(nil)

type logrusEntry struct {
	entry *logrus.Entry
	level logrus.Level
}

func (l *LogrusLogger) Start() error {
	l.logger = logrus.New()
	if l.level != nil {
		l.logger.SetLevel(*l.level)
	} else if l.Config != nil {
		if err := l.SetLevel(l.Config.Logging.Level.String()); err != nil {
			return err
		}
	}
	return nil
}

func (l *LogrusLogger) Stop() error {
	return nil
}

func (l *LogrusLogger) entryAt(level logrus.Level) Entry {
	return &logrusEntry{
		entry: logrus.NewEntry(l.logger),
		level: level,
	}
}

func (l *LogrusLogger) Debug() Entry {
	return l.entryAt(logrus.DebugLevel)
}

func (l *LogrusLogger) Info() Entry {
	return l.entryAt(logrus.InfoLevel)
}

func (l *LogrusLogger) Warn() Entry {
	return l.entryAt(logrus.WarnLevel)
}

func (l *LogrusLogger) Error() Entry {
	return l.entryAt(logrus.ErrorLevel)
}

func (l *LogrusLogger) SetLevel(level string) error {
	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	// record the choice and set it if we're already initialized
	l.level = &logrusLevel
	if l.logger != nil {
		l.logger.SetLevel(logrusLevel)
	}
	return nil
}

func (e *logrusEntry) WithField(key string, value any) Entry {
	return &logrusEntry{
		entry: e.entry.WithField(key, value),
		level: e.level,
	}
}

func (e *logrusEntry) WithString(key string, value string) Entry {
	return e.WithField(key, value)
}

func (e *logrusEntry) WithFields(fields map[string]any) Entry {
	return &logrusEntry{
		entry: e.entry.WithFields(fields),
		level: e.level,
	}
}

func (e *logrusEntry) Logf(f string, args ...any) {
	e.entry.Logf(e.level, f, args...)
}
