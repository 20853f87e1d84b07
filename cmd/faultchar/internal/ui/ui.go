package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Out receives everything printed by this package.
var Out io.Writer = os.Stdout

// PrintHeader prints a section header
func PrintHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	fmt.Fprintf(Out, "\n%s%s%s\n", colorBold+colorBlue, line, colorReset)
	fmt.Fprintf(Out, "%s  %s  %s\n", colorBold+colorBlue, title, colorReset)
	fmt.Fprintf(Out, "%s%s%s\n\n", colorBold+colorBlue, line, colorReset)
}

// PrintStep prints a step in progress
func PrintStep(message string) {
	fmt.Fprintf(Out, "%s▶%s %s\n", colorCyan, colorReset, message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(Out, "%s✓%s %s\n", colorGreen, colorReset, message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(Out, "%s✗%s %s\n", colorRed, colorReset, message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(Out, "%s⚠%s %s\n", colorYellow, colorReset, message)
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Fprintf(Out, "  %s\n", message)
}

// PrintCombination prints a failure-inducing combination
func PrintCombination(rank int, text string, raw string) {
	fmt.Fprintf(Out, "  %s%d.%s %s%s%s %s%s%s\n",
		colorBold+colorRed, rank, colorReset,
		colorYellow, text, colorReset,
		colorGray, raw, colorReset)
}

// PrintStatus prints a session status with a color matching its outcome
func PrintStatus(status string) {
	color := colorYellow
	switch status {
	case "COMPLETE":
		color = colorGreen
	case "FAILED":
		color = colorRed
	}
	fmt.Fprintf(Out, "%sStatus:%s %s%s%s\n", colorBold, colorReset, color, status, colorReset)
}

// PrintTable prints a simple table
func PrintTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(Out, "%s%-*s%s  ", colorBold, widths[i], h, colorReset)
	}
	fmt.Fprintln(Out)

	for _, w := range widths {
		fmt.Fprint(Out, strings.Repeat("-", w)+"  ")
	}
	fmt.Fprintln(Out)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(Out, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(Out)
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
