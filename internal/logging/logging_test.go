package logging

import (
	"bytes"
	"log"
	"os"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestDebugDisabled(t *testing.T) {
	DebugEnabled = false
	buf := captureLog(t)

	Debug("lexer fallback on line %d", 3)

	if buf.Len() > 0 {
		t.Errorf("Debug output when disabled: %s", buf.String())
	}
}

func TestDebugEnabled(t *testing.T) {
	DebugEnabled = true
	defer func() { DebugEnabled = false }()
	buf := captureLog(t)

	Debug("mode %s -> %s", "body", "final-line")

	if !bytes.Contains(buf.Bytes(), []byte("DEBUG: mode body -> final-line")) {
		t.Errorf("Expected debug output, got: %s", buf.String())
	}
}

func TestWarn(t *testing.T) {
	buf := captureLog(t)

	Warn("unknown style %q", "magenta")

	if !bytes.Contains(buf.Bytes(), []byte(`WARN: unknown style "magenta"`)) {
		t.Errorf("Expected warning output, got: %s", buf.String())
	}
}
