package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:           &buf,
		Level:            INFO,
		ColorEnabled:     false,
		TimestampEnabled: false,
		RedactSensitive:  true,
	})

	logger.Info("request sent", F("header", "Bearer ya29.a0AfH6SMB-token-value"))
	logger.Info("token refreshed: access_token=ya29.secret-value")

	output := buf.String()
	if strings.Contains(output, "ya29") {
		t.Errorf("Sensitive token leaked into output: %s", output)
	}
	if !strings.Contains(output, "[REDACTED]") {
		t.Errorf("Expected redaction marker in output: %s", output)
	}
}

func TestConsoleLogger_TraceIDPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:           &buf,
		Level:            INFO,
		ColorEnabled:     false,
		TimestampEnabled: false,
	})

	traced := logger.WithTraceID("abcdef1234567890")
	traced.Info("test message")

	// Trace IDs are shortened to the first 8 characters
	if !strings.Contains(buf.String(), "[abcdef12]") {
		t.Errorf("Expected shortened trace ID in output: %s", buf.String())
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:           &buf,
		Level:            ERROR,
		ColorEnabled:     false,
		TimestampEnabled: false,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	if buf.Len() != 0 {
		t.Errorf("Expected no output below ERROR, got: %s", buf.String())
	}

	logger.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("Expected error message in output: %s", buf.String())
	}
}
