package app

import (
	"github.com/sirupsen/logrus"

	"github.com/treykane/tagnav/internal/logging"
)

// appLog is the structured logger for the app package.
var appLog = logging.New("app")

// setStatusError updates the status bar with a user-facing error message and
// logs the error with context.
//
// The status is displayed verbatim; err and fields only go to the log.
//
//	m.setStatusError("Delete failed", err, logrus.Fields{"paths": paths})
func (m *Model) setStatusError(status string, err error, fields ...logrus.Fields) {
	m.status = status
	m.statusIsError = true
	entry := appLog.WithError(err)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.Error(status)
}

// setStatus shows an informational message.
func (m *Model) setStatus(status string) {
	m.status = status
	m.statusIsError = false
}
