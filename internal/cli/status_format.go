package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/opencode-ai/director/internal/replay"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308")).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
)

// formatOutcome renders a run outcome as a short badge.
func formatOutcome(outcome replay.Outcome, failed int) string {
	label, style := outcomeDescriptor(outcome, failed)
	return render(style, formatStatusLabel(label, string(outcome)))
}

func outcomeDescriptor(outcome replay.Outcome, failed int) (string, lipgloss.Style) {
	switch outcome {
	case replay.OutcomeCompleted:
		if failed > 0 {
			return "WARN", styleWarning
		}
		return "OK", styleSuccess
	case replay.OutcomeInterrupted:
		return "STOP", styleWarning
	case replay.OutcomeAlreadyRunning:
		return "BUSY", styleError
	default:
		return "-", styleMuted
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}

func render(style lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return style.Render(text)
}
