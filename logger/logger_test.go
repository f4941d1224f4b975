package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("notes-api", "debug", &buf)

	log.WithField("path", "/api/notes").Debug("request")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "notes-api", line["service"])
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "/api/notes", line["path"])
	assert.Contains(t, line, "timestamp")
}

func TestLevels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"verbose": logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, New("svc", in).Logger.GetLevel(), "level %q", in)
	}
}
