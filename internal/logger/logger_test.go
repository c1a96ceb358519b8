package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		level  zapcore.LevelEnabler
		format string
	}{
		{name: "debug json", level: zapcore.DebugLevel, format: FormatJSON},
		{name: "info console", level: zapcore.InfoLevel, format: FormatConsole},
		{name: "nil level", level: nil, format: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := New(tt.level, tt.format)
			assert.NotNil(t, l)
		})
	}
}

func TestNewNilLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	l := New(nil, FormatJSON)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected zapcore.Level
		valid    bool
	}{
		{name: "debug", input: "debug", expected: zapcore.DebugLevel, valid: true},
		{name: "warn", input: "warn", expected: zapcore.WarnLevel, valid: true},
		{name: "uppercase", input: "ERROR", expected: zapcore.ErrorLevel, valid: true},
		{name: "with spaces", input: " info ", expected: zapcore.InfoLevel, valid: true},
		{name: "invalid", input: "verbose", expected: zapcore.InfoLevel, valid: false},
		{name: "empty", input: "", expected: zapcore.InfoLevel, valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, valid := ParseLogLevel(tt.input)
			assert.Equal(t, tt.expected, level)
			assert.Equal(t, tt.valid, valid)
		})
	}
}
