// Package logging provides a shared, structured logger for tagnav.
//
// It wraps [github.com/sirupsen/logrus] and provides a single initialization
// point so all components share the same output and level. The level is
// controlled at startup via the TAGNAV_LOG_LEVEL environment variable (debug,
// info, warn, error). If unset, the default level is INFO.
//
// Usage:
//
//	log := logging.New("tagtree")       // entry tagged with component="tagtree"
//	log.WithField("pattern", p).Warn("invalid tag pattern")
//	log.WithError(err).Error("delete failed")
//
// Output goes to the file named by TAGNAV_LOG_FILE when set, otherwise to
// stderr. Running the TUI with TAGNAV_LOG_FILE keeps log lines out of the
// alternate screen.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// initLogger ensures the base logger is created exactly once.
	initLogger sync.Once

	// baseLogger is shared by all components; component loggers are derived
	// from it via WithField.
	baseLogger *logrus.Logger
)

// New returns a logger scoped to the given component name.
//
// The component name is attached as a "component" field to every entry. If
// component is empty the returned entry carries no extra fields.
func New(component string) *logrus.Entry {
	initLogger.Do(func() {
		baseLogger = newBaseLogger(os.Getenv("TAGNAV_LOG_LEVEL"), os.Getenv("TAGNAV_LOG_FILE"))
	})
	if component == "" {
		return logrus.NewEntry(baseLogger)
	}
	return baseLogger.WithField("component", component)
}

// SetOutput redirects every component logger. The CLI uses it to silence
// logging while the alternate screen is active.
func SetOutput(w io.Writer) {
	New("").Logger.SetOutput(w)
}

// ToFile reports whether log output goes to TAGNAV_LOG_FILE.
func ToFile() bool {
	f, ok := New("").Logger.Out.(*os.File)
	return ok && f != os.Stderr
}

func newBaseLogger(level, file string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(parseLevel(level))
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	if path := strings.TrimSpace(file); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			logger.WithError(err).WithField("path", path).Warn("open log file, falling back to stderr")
		} else {
			logger.SetOutput(f)
		}
	}
	return logger
}

// parseLevel converts a human-readable log level string to a [logrus.Level].
//
// Recognized values (case-insensitive, whitespace-trimmed):
//   - "debug"           → logrus.DebugLevel
//   - "warn", "warning" → logrus.WarnLevel
//   - "error"           → logrus.ErrorLevel
//   - anything else     → logrus.InfoLevel (the default)
func parseLevel(value string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
