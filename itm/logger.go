package itm

import "github.com/sirupsen/logrus"

// Severity represents log message severity levels.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging contract the Decoder reports malformed packets,
// resync events, and batch boundaries through. Implementations must be
// safe to call from a single goroutine at a time, matching the Decoder's
// own single-threaded contract.
type Logger interface {
	Log(severity Severity, msg string)
	Logf(severity Severity, format string, args ...interface{})
	Error(err error)
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
}

// NoOpLogger discards everything. It is the Decoder's default.
type NoOpLogger struct{}

func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (NoOpLogger) Log(Severity, string)            {}
func (NoOpLogger) Logf(Severity, string, ...interface{}) {}
func (NoOpLogger) Error(error)                     {}
func (NoOpLogger) Debug(string)                    {}
func (NoOpLogger) Info(string)                     {}
func (NoOpLogger) Warning(string)                  {}

// LogrusLogger adapts a *logrus.Logger (or any entry-producing logger) to
// the Logger interface, so callers embedding this decoder in a larger
// service get structured fields instead of plain lines.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps l. A nil l falls back to logrus's standard logger.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: l.WithField("component", "itm")}
}

func (l *LogrusLogger) Log(severity Severity, msg string) {
	l.entry.Log(severityToLevel(severity), msg)
}

func (l *LogrusLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.entry.Logf(severityToLevel(severity), format, args...)
}

func (l *LogrusLogger) Error(err error) { l.entry.WithError(err).Error("decode error") }
func (l *LogrusLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *LogrusLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *LogrusLogger) Warning(msg string) { l.entry.Warning(msg) }

func severityToLevel(s Severity) logrus.Level {
	switch s {
	case SeverityDebug:
		return logrus.DebugLevel
	case SeverityInfo:
		return logrus.InfoLevel
	case SeverityWarning:
		return logrus.WarnLevel
	case SeverityError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
