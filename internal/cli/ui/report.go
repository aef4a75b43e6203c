package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/stackvity/utf-converter/pkg/converter"
)

// --- Styles ---

// Color palette
var (
	ColorHeaderFg = lipgloss.Color("252") // Light Gray
	ColorHeaderBg = lipgloss.Color("62")  // Purple
	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56") // Dark Pink/Purple
	ColorDimFg    = lipgloss.Color("244")

	ColorStatusSuccess = lipgloss.Color("40")  // Green
	ColorStatusFailed  = lipgloss.Color("196") // Red
	ColorStatusSkipped = lipgloss.Color("214") // Orange/Yellow
	ColorStatusInfo    = lipgloss.Color("39")  // Blue
)

// Styles groups the styles used by the text report. The zero value renders plain text.
type Styles struct {
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Section lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// PlainStyles renders without any escape sequences, used when stdout is not a terminal.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Header: s, Footer: s, Section: s, Success: s, Failed: s, Skipped: s, Info: s, Dim: s}
}

// ColorStyles is the terminal palette.
func ColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1),
		Section: lipgloss.NewStyle().Bold(true).Underline(true),
		Success: lipgloss.NewStyle().Foreground(ColorStatusSuccess),
		Failed:  lipgloss.NewStyle().Foreground(ColorStatusFailed),
		Skipped: lipgloss.NewStyle().Foreground(ColorStatusSkipped),
		Info:    lipgloss.NewStyle().Foreground(ColorStatusInfo),
		Dim:     lipgloss.NewStyle().Foreground(ColorDimFg),
	}
}

// Render writes the report to w in the requested format. Styles only affect the text format.
func Render(w io.Writer, report converter.Report, format converter.OutputFormat, styles Styles) error {
	switch format {
	case converter.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		return nil
	case converter.OutputFormatTOML:
		if err := toml.NewEncoder(w).Encode(report); err != nil {
			return fmt.Errorf("failed to encode report as TOML: %w", err)
		}
		return nil
	case converter.OutputFormatText, "":
		_, err := io.WriteString(w, RenderText(report, styles))
		return err
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}

// RenderText formats the report for humans.
func RenderText(report converter.Report, st Styles) string {
	var b strings.Builder
	root := report.Summary.RootPath

	header := fmt.Sprintf("cvt2utf %s  %s", report.Command, root)
	if report.Summary.Target != "" {
		header += "  -> " + report.Summary.Target
	}
	if report.Summary.DryRun {
		header += "  (dry run)"
	}
	b.WriteString(st.Header.Render(header))
	b.WriteString("\n")

	if len(report.Converted) > 0 {
		section(&b, st, "Converted")
		for _, c := range report.Converted {
			line := fmt.Sprintf("  %s %s  %s -> %s  %s",
				st.Success.Render("✓"), rel(root, c.Path), c.From, c.To, st.Dim.Render(confidence(c.Confidence)))
			if c.BackupPath != "" {
				line += st.Dim.Render("  backup: " + rel(root, c.BackupPath))
			}
			b.WriteString(line + "\n")
		}
	}

	if len(report.Detections) > 0 {
		section(&b, st, "Detected")
		for _, d := range report.Detections {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", st.Info.Render("•"), rel(root, d.Path), detection(d, st)))
		}
	}

	if len(report.Removed) > 0 {
		title := "Removed"
		if report.Summary.DryRun {
			title = "Would remove"
		}
		section(&b, st, title)
		for _, r := range report.Removed {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n",
				st.Success.Render("✓"), rel(root, r.Path), st.Dim.Render("created "+r.CreatedAt.Format(time.DateTime))))
		}
	}

	if len(report.Skipped) > 0 {
		section(&b, st, "Skipped")
		for _, s := range report.Skipped {
			line := fmt.Sprintf("  %s %s  %s", st.Skipped.Render("-"), rel(root, s.Path), s.Reason)
			if s.Details != "" {
				line += st.Dim.Render(": " + s.Details)
			}
			b.WriteString(line + "\n")
		}
	}

	if len(report.Errors) > 0 {
		section(&b, st, "Errors")
		for _, e := range report.Errors {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", st.Failed.Render("✗"), rel(root, e.Path), e.Error))
		}
	}

	b.WriteString(st.Footer.Render(summaryLine(report)))
	b.WriteString("\n")
	return b.String()
}

func section(b *strings.Builder, st Styles, title string) {
	b.WriteString(st.Section.Render(title))
	b.WriteString("\n")
}

func summaryLine(report converter.Report) string {
	s := report.Summary
	parts := []string{fmt.Sprintf("Scanned: %d", s.TotalFilesScanned)}
	switch report.Command {
	case converter.CommandConvert:
		parts = append(parts, fmt.Sprintf("Converted: %d", s.ConvertedCount), fmt.Sprintf("Skipped: %d", s.SkippedCount))
	case converter.CommandDetect:
		parts = append(parts, fmt.Sprintf("Detected: %d", s.DetectedCount), fmt.Sprintf("Skipped: %d", s.SkippedCount))
	case converter.CommandCleanBak:
		parts = append(parts, fmt.Sprintf("Removed: %d", s.RemovedCount))
	}
	parts = append(parts,
		fmt.Sprintf("Failed: %d", s.ErrorCount),
		"Elapsed: "+formatDuration(time.Duration(s.DurationSeconds*float64(time.Second))),
	)
	line := strings.Join(parts, " | ")
	if s.Interrupted {
		line += " | INTERRUPTED"
	}
	return line
}

func detection(d converter.DetectionInfo, st Styles) string {
	switch {
	case d.Binary:
		return st.Skipped.Render("binary")
	case d.Codec == "":
		raw := d.Raw
		if raw == "" {
			raw = "none"
		}
		return st.Failed.Render("unknown") + st.Dim.Render(fmt.Sprintf(" (guess %s %s)", raw, confidence(d.Confidence)))
	case d.ASCII:
		return d.Codec + st.Dim.Render(" (ascii)")
	default:
		return d.Codec + "  " + st.Dim.Render(confidence(d.Confidence))
	}
}

func confidence(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

// rel shortens path to be relative to root when it lies below it.
func rel(root, path string) string {
	if root == "" {
		return path
	}
	r, err := filepath.Rel(root, path)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return path
	}
	return r
}

// formatDuration formats duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		if d <= 0 {
			return "0s"
		}
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
