// ColorStdoutWriter prints human-friendly, colorized run summaries to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"time"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

func colorWhite() string { return "\x1b[97m" }

// ColorStdoutWriter prints run rows using ANSI colors.
type ColorStdoutWriter struct {
	out io.Writer
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

// WriteRun prints one colorized run summary line.
func (w *ColorStdoutWriter) WriteRun(row RunRow) error {
	_, err := fmt.Fprintln(w.out, formatRunLine(row))
	return err
}

// WriteRuns prints multiple run summary lines.
func (w *ColorStdoutWriter) WriteRuns(rows []RunRow) error {
	for _, r := range rows {
		if err := w.WriteRun(r); err != nil {
			return err
		}
	}
	return nil
}

// formatRunLine renders one run row as a colorized log line. Shared with the
// TUI run log.
func formatRunLine(row RunRow) string {
	devColor := colorGreen
	if dev := relativeDeviation(row.EmpiricalMean, row.TheoreticalMean); dev > 0.05 {
		devColor = colorYellow
	}
	return fmt.Sprintf("%s[%s]%s %srun=%s%s %slambda=%.2f%s %smu=%.2f%s %sT=%.0f%s %ssims=%d%s %sarrivals=%d%s %sfinal=%.2f%s %smean=%.2f/%.2f%s %svar=%.2f/%.2f%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, shortID(row.RunID), colorReset,
		colorGreen, row.ArrivalRate, colorReset,
		colorYellow, row.JumpRate, colorReset,
		colorCyan, row.Horizon, colorReset,
		colorMagenta, row.Simulations, colorReset,
		colorWhite(), row.Arrivals, colorReset,
		colorCyan, row.PathFinal, colorReset,
		devColor, row.EmpiricalMean, row.TheoreticalMean, colorReset,
		colorGray, row.EmpiricalVariance, row.TheoreticalVariance, colorReset,
	)
}

func relativeDeviation(empirical, theoretical float64) float64 {
	if theoretical == 0 {
		return 0
	}
	d := (empirical - theoretical) / theoretical
	if d < 0 {
		return -d
	}
	return d
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
