package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"compound-sim/internal/sim"
)

func TestNewWritersPrintOnlyJSON(t *testing.T) {
	rw, pw, hw, cleanup, err := newWriters(true, true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := rw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", rw)
	}
	if _, ok := pw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected path writer *sim.StdoutWriter, got %T", pw)
	}
	if _, ok := hw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected histogram writer *sim.StdoutWriter, got %T", hw)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	rw, pw, hw, cleanup, err := newWriters(false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := rw.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", rw)
	}
	if pw != nil || hw != nil {
		t.Fatal("colorized output should not export paths or histograms")
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.log")
	rw, pw, hw, cleanup, err := newWriters(true, true, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := rw.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", rw)
	}
	row := sim.RunRow{RunID: "r1", LabID: "lab-1", Timestamp: time.Now()}
	if err := rw.WriteRun(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := pw.WritePath(sim.PathRow{RunID: "r1"}); err != nil {
		t.Fatalf("write path failed: %v", err)
	}
	if err := hw.WriteHistogram(sim.HistogramRow{RunID: "r1"}); err != nil {
		t.Fatalf("write histogram failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log file to be non-empty")
	}
	pathInfo, err := os.Stat(path + ".path")
	if err != nil {
		t.Fatalf("stat path log failed: %v", err)
	}
	if pathInfo.Size() == 0 {
		t.Fatalf("expected path log to be non-empty")
	}
}
