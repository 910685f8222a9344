package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitialization(t *testing.T) {
	testCases := []struct {
		name     string
		level    LogLevel
		expected logrus.Level
	}{
		{"debug_level", DebugLevel, logrus.DebugLevel},
		{"info_level", InfoLevel, logrus.InfoLevel},
		{"warn_level", WarnLevel, logrus.WarnLevel},
		{"error_level", ErrorLevel, logrus.ErrorLevel},
		{"fatal_level", FatalLevel, logrus.FatalLevel},
		{"upper_case", "DEBUG", logrus.DebugLevel},
		{"invalid_level", "invalid", logrus.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			Init(tc.level)
			assert.Equal(t, tc.expected, Get().GetLevel())
		})
	}
}

func TestGetDefaultInitialization(t *testing.T) {
	mu.Lock()
	log = nil
	mu.Unlock()

	l := Get()
	require.NotNil(t, l)
	assert.Equal(t, logrus.PanicLevel, l.GetLevel())
	assert.Same(t, l, Get())
}

func TestTextOutputContainsFields(t *testing.T) {
	Init(InfoLevel)
	var buf bytes.Buffer
	SetOutput(&buf)

	WithField("key", "mylist").Infof("pushed %d values", 3)

	out := buf.String()
	assert.Contains(t, out, "pushed 3 values")
	assert.Contains(t, out, "key=mylist")
}

func TestJSONFormat(t *testing.T) {
	InitWithFormat(DebugLevel, JSONFormat)
	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(logrus.Fields{"command": "LPUSH"}).Debugf("executed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "executed", entry["msg"])
	assert.Equal(t, "LPUSH", entry["command"])
	assert.Equal(t, "debug", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	Init(WarnLevel)
	var buf bytes.Buffer
	SetOutput(&buf)

	Infof("hidden")
	Warnf("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
