package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  logrus.Level
	}{
		{name: "default", input: "", want: logrus.InfoLevel},
		{name: "debug", input: "debug", want: logrus.DebugLevel},
		{name: "warn alias", input: " Warning ", want: logrus.WarnLevel},
		{name: "error", input: "error", want: logrus.ErrorLevel},
		{name: "invalid", input: "nope", want: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("rows")
	prev := log.Logger.Out
	log.Logger.SetOutput(&buf)
	t.Cleanup(func() { log.Logger.SetOutput(prev) })

	log.Warn("cyclic folder skipped")
	assert.Contains(t, buf.String(), "component=rows")
	assert.Contains(t, buf.String(), "cyclic folder skipped")
}

func TestNewBaseLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagnav.log")
	logger := newBaseLogger("debug", path)
	logger.Debug("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
