package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/swrcache"
)

func TestLoggerOrderedAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))}

	l.Debug("dropped", swrcache.Fields{"key": "x"})
	l.Warn("store write failed", swrcache.Fields{"op": "report", "key": "k1"})

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("debug should be filtered: %q", out)
	}
	if !strings.Contains(out, `level=WARN msg="store write failed" key=k1 op=report`) {
		t.Fatalf("unexpected output %q", out)
	}
}
