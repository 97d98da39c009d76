package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	l := New()
	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("expected the stored logger back, got %v", got)
	}
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("expected a fallback logger for a bare context")
	}
}

func TestWithRunScopesRecords(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	WithRun(l, "r1").Error("write failed", "err", "sink down")
	out := buf.String()
	if !strings.Contains(out, "run_id=r1") {
		t.Fatalf("expected run_id attribute, got %q", out)
	}
	if !strings.Contains(out, "write failed") {
		t.Fatalf("expected message, got %q", out)
	}
}

func TestDiscardDropsRecords(t *testing.T) {
	l := Discard()
	if l == nil {
		t.Fatal("expected a usable logger")
	}
	l.Info("never shown")
}
