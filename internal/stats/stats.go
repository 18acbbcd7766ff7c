// Package stats aggregates stored session results for reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/typelit/typelit/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of session results.
type Summary struct {
	Sessions    int
	AvgGrossWPM float64
	AvgNetWPM   float64
	BestNetWPM  float64
	AvgAccuracy float64
	TotalChars  int
	TotalErrors int
}

// Summarize computes aggregate figures over results.
func Summarize(results []model.SessionResult) Summary {
	s := Summary{Sessions: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.AvgGrossWPM += r.GrossWPM
		s.AvgNetWPM += r.NetWPM
		s.AvgAccuracy += r.Accuracy
		s.TotalChars += r.Chars
		s.TotalErrors += r.Errors
		if r.NetWPM > s.BestNetWPM {
			s.BestNetWPM = r.NetWPM
		}
	}
	count := float64(len(results))
	s.AvgGrossWPM /= count
	s.AvgNetWPM /= count
	s.AvgAccuracy /= count
	return s
}

// NetSeries extracts the net WPM of each result, oldest first.
func NetSeries(results []model.SessionResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.NetWPM
	}
	return out
}

// Resample shrinks a series to at most width points by averaging
// evenly sized buckets, so a sparkline fits the terminal.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of results with a net WPM sparkline
// sized to the given width.
func RenderSummary(w io.Writer, results []model.SessionResult, width int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg net WPM: %.1f", s.AvgNetWPM),
		fmt.Sprintf("Best net WPM: %.1f", s.BestNetWPM),
		fmt.Sprintf("Avg gross WPM: %.1f", s.AvgGrossWPM),
		fmt.Sprintf("Avg accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Typed: %d chars, %d errors", s.TotalChars, s.TotalErrors),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(results) > 1 {
		spark := Sparkline(Resample(NetSeries(results), width))
		if _, err := fmt.Fprintf(w, "Net WPM trend: %s\n", spark); err != nil {
			return err
		}
	}
	return nil
}
