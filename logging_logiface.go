package wireup

import "github.com/joeycumines/logiface"

// logifaceLogger adapts a configured logiface.Logger[E] — backed by any
// of its concrete event implementations (stumpy, zerolog, logrus) — to
// the Logger interface, so a caller that already has a logiface-based
// logging setup can plug it straight into a Wiring.
type logifaceLogger[E logiface.Event] struct {
	logger *logiface.Logger[E]
}

// NewLogifaceLogger wraps an existing logiface logger for use as a
// Wiring's Logger.
func NewLogifaceLogger[E logiface.Event](l *logiface.Logger[E]) Logger {
	return &logifaceLogger[E]{logger: l}
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

func (l *logifaceLogger[E]) IsEnabled(level LogLevel) bool {
	cfg := l.logger.Level()
	if !cfg.Enabled() {
		return false
	}
	ev := toLogifaceLevel(level)
	return ev.Enabled() && (ev <= cfg || ev > logiface.LevelTrace)
}

func (l *logifaceLogger[E]) Log(entry LogEntry) {
	b := l.logger.Build(toLogifaceLevel(entry.Level))
	b = b.Str("category", string(entry.Category))
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}
