package logger

// Logger is the logging facade used throughout the library. Components hold
// one of these rather than a concrete logging implementation so that an
// instrumentation failure can never take down the host application -- the
// default inside every component is the NullLogger.
type Logger interface {
	Debug() Entry
	Info() Entry
	Warn() Entry
	Error() Entry
	// SetLevel sets the logging level (debug, info, warn, error)
	SetLevel(level string) error
}

// Entry is a log event under construction; call Logf to emit it.
type Entry interface {
	WithField(key string, value any) Entry
	WithString(key string, value string) Entry
	WithFields(fields map[string]any) Entry
	Logf(f string, args ...any)
}
