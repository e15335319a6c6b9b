package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestKeysAreRedacted(t *testing.T) {
	h, buf := newTestHooks(Options{})
	h.BackgroundComputeFailed("swrcache///report/abc", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "report/abc") {
		t.Fatalf("raw key leaked: %q", out)
	}
	if !strings.Contains(out, "swrcache.background_compute_failed") || !strings.Contains(out, "err=boom") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newTestHooks(Options{Redact: func(string) string { return "K" }})
	h.GenerationSkipped("anything")
	if !strings.Contains(buf.String(), "key=K") {
		t.Fatalf("custom redactor not used: %q", buf.String())
	}
}

func TestSelfHealSampling(t *testing.T) {
	h, buf := newTestHooks(Options{SelfHealEvery: 3})
	for i := 0; i < 9; i++ {
		h.SelfHeal("k", "corrupt")
	}
	if n := strings.Count(buf.String(), "swrcache.self_heal"); n != 3 {
		t.Fatalf("logged %d self-heals, want 3", n)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.SelfHeal("k", "corrupt")
	h.StoreReadFailed("k", errors.New("x"))
	h.GenError("k", errors.New("x"))
}
