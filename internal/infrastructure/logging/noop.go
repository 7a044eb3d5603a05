package logging

type noopLogger struct{}

// NewNopLogger returns a logger that discards everything. Intended for
// tests.
func NewNopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Init() {}

func (noopLogger) Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {}
func (noopLogger) Debugf(template string, args ...any)                                     {}

func (noopLogger) Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {}
func (noopLogger) Infof(template string, args ...any)                                     {}

func (noopLogger) Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {}
func (noopLogger) Warnf(template string, args ...any)                                     {}

func (noopLogger) Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {}
func (noopLogger) Errorf(template string, args ...any)                                     {}

func (noopLogger) Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {}
func (noopLogger) Fatalf(template string, args ...any)                                     {}
