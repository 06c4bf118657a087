package logger

type NullLogger struct{}

var _ Logger = (*NullLogger)(nil)

func (n *NullLogger) Debug() Entry          { return &nullEntry{} }
func (n *NullLogger) Info() Entry           { return &nullEntry{} }
func (n *NullLogger) Warn() Entry           { return &nullEntry{} }
func (n *NullLogger) Error() Entry          { return &nullEntry{} }
func (n *NullLogger) SetLevel(string) error { return nil }

type nullEntry struct{}

func (n *nullEntry) WithField(string, any) Entry     { return n }
func (n *nullEntry) WithString(string, string) Entry { return n }
func (n *nullEntry) WithFields(map[string]any) Entry { return n }
func (n *nullEntry) Logf(string, ...any)             {}
