package logger

import (
	"fmt"
	"maps"
	"sync"

	"github.com/opsarena/meterage/config"
)

// MockLogger collects every emitted event so tests can assert on what was
// logged and at what level.
type MockLogger struct {
	Events []*MockEvent
	mutex  sync.Mutex
}

var _ Logger = (*MockLogger)(nil)

type MockEvent struct {
	l       *MockLogger
	Level   config.Level
	Fields  map[string]any
	Message string
}

func (l *MockLogger) at(level config.Level) Entry {
	return &MockEvent{
		l:      l,
		Level:  level,
		Fields: make(map[string]any),
	}
}

func (l *MockLogger) Debug() Entry { return l.at(config.DebugLevel) }
func (l *MockLogger) Info() Entry  { return l.at(config.InfoLevel) }
func (l *MockLogger) Warn() Entry  { return l.at(config.WarnLevel) }
func (l *MockLogger) Error() Entry { return l.at(config.ErrorLevel) }

func (l *MockLogger) SetLevel(level string) error { return nil }

// EventsAt returns the collected events emitted at the given level.
func (l *MockLogger) EventsAt(level config.Level) []*MockEvent {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	var out []*MockEvent
	for _, e := range l.Events {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (e *MockEvent) WithField(key string, value any) Entry {
	e.Fields[key] = value
	return e
}

func (e *MockEvent) WithString(key string, value string) Entry {
	return e.WithField(key, value)
}

func (e *MockEvent) WithFields(fields map[string]any) Entry {
	maps.Copy(e.Fields, fields)
	return e
}

func (e *MockEvent) Logf(f string, args ...any) {
	e.Message = fmt.Sprintf(f, args...)
	e.l.mutex.Lock()
	e.l.Events = append(e.l.Events, e)
	e.l.mutex.Unlock()
}
