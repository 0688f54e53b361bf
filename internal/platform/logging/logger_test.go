package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_WritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelInfo).Named("dispatcher")

	logger.Info("command rejected", "command", "setdown", "error", errors.New("down must be 1-4"))
	logger.Debug("dropped below level", "command", "dd")

	out := buf.String()
	for _, want := range []string{`"msg":"command rejected"`, `"command":"setdown"`, `"error":"down must be 1-4"`, `"logger":"dispatcher"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output, got %s", want, out)
		}
	}
	if strings.Contains(out, "dropped below level") {
		t.Fatalf("debug entry should be filtered at info level: %s", out)
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Named("x") == nil {
		t.Fatalf("expected named logger from nil receiver")
	}
}
