// Package report renders pricing tables and the premium analysis for the
// terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/jdgilhuly/premium_tracker/pkg/analysis"
	"github.com/jdgilhuly/premium_tracker/pkg/catalog"
)

const (
	banner      = "🔍 LLM Pricing Tracker — Reasoning Premium Collapse Prediction"
	horizon     = "6-month timeline"
	ruleWidth   = 60
	iconYes     = "✅"
	iconNo      = "❌"
	labelReason = "Reasoning"
	labelBase   = "Base"
)

// TypeLabel returns the display label for a model's type.
func TypeLabel(m catalog.Model) string {
	if m.Reasoning {
		return labelReason
	}
	return labelBase
}

// ReasoningIcon returns the reasoning indicator symbol for a model.
func ReasoningIcon(m catalog.Model) string {
	if m.Reasoning {
		return iconYes
	}
	return iconNo
}

// FormatPrice formats a per-million-token price as dollars.
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// FormatRatio formats a ratio the way it is persisted: shortest form, but
// always with at least one decimal place.
func FormatRatio(r float64) string {
	if r == math.Trunc(r) && !math.IsInf(r, 0) {
		return strconv.FormatFloat(r, 'f', 1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// SignalLabelPlain returns the uncolored collapse signal line.
func SignalLabelPlain(s *analysis.Summary) string {
	threshold := FormatRatio(s.CollapseThreshold)
	if s.PremiumCollapsing {
		return fmt.Sprintf("%s SIGNAL: Premium may be collapsing (ratio < %s)", iconYes, threshold)
	}
	return fmt.Sprintf("%s SIGNAL: Premium intact (ratio ≥ %s)", iconNo, threshold)
}

// SignalLabel returns the collapse signal line colored for terminal display.
func SignalLabel(s *analysis.Summary) string {
	c := color.New(color.FgRed, color.Bold)
	if s.PremiumCollapsing {
		c = color.New(color.FgGreen, color.Bold)
	}
	c.EnableColor()
	return c.Sprint(SignalLabelPlain(s))
}

// FormatTable renders one provider's models as a markdown table headed by
// the upper-cased provider name. Rows keep catalog order.
func FormatTable(provider string, models []catalog.Model) string {
	lines := []string{
		"",
		"### " + strings.ToUpper(provider),
		"| Model | Type | Price/1M tokens | Reasoning |",
		"|-------|------|----------------|-----------|",
	}
	for _, m := range models {
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |",
			m.Name, TypeLabel(m), FormatPrice(m.PricePerMillion), ReasoningIcon(m)))
	}
	return strings.Join(lines, "\n")
}

// PrintReport writes the banner, every provider table and, when rep has a
// summary, the analysis section.
func PrintReport(w io.Writer, cat catalog.Catalog, rep *analysis.Report, useColor bool) {
	heading := plain
	if useColor {
		heading = bold
	}
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintf(w, "%s\n\n", heading(banner))
	fmt.Fprintln(w, rule)

	for _, p := range cat.Providers {
		fmt.Fprintln(w, FormatTable(p.Name, p.Models))
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, heading("📊 ANALYSIS"))
	fmt.Fprintln(w, rule)

	s := rep.Summary
	if s == nil {
		return
	}

	fmt.Fprintf(w, "\nBase model average: %s/1M tokens\n", FormatPrice(s.OverallBaseAvg))
	fmt.Fprintf(w, "Reasoning model average: %s/1M tokens\n", FormatPrice(s.OverallReasoningAvg))
	fmt.Fprintf(w, "Premium ratio: %sx\n", FormatRatio(s.OverallPremiumRatio))

	signal := SignalLabelPlain(s)
	if useColor {
		signal = SignalLabel(s)
	}
	fmt.Fprintf(w, "\n%s\n", signal)

	fmt.Fprintf(w, "\nPrediction status: %s → %sx collapse threshold\n",
		horizon, FormatRatio(s.CollapseThreshold))
}

// PrintSaved writes the snapshot confirmation line.
func PrintSaved(w io.Writer, path string) {
	fmt.Fprintf(w, "\n%s Snapshot saved: %s\n", iconYes, path)
}

func plain(s string) string { return s }

func bold(s string) string {
	c := color.New(color.Bold)
	c.EnableColor()
	return c.Sprint(s)
}
