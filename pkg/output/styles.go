package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette, adapting to light and dark terminals
var (
	PrimaryColor = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	InfoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
)

// newStyles builds the named styles available to templates through the
// style function
func newStyles(r *lipgloss.Renderer) map[string]lipgloss.Style {
	return map[string]lipgloss.Style{
		"title":   r.NewStyle().Foreground(HeadingColor).Bold(true),
		"heading": r.NewStyle().Foreground(PrimaryColor).Bold(true),
		"muted":   r.NewStyle().Foreground(MutedColor),
		"success": r.NewStyle().Foreground(SuccessColor).Bold(true),
		"error":   r.NewStyle().Foreground(ErrorColor).Bold(true),
		"warning": r.NewStyle().Foreground(WarningColor).Bold(true),
		"info":    r.NewStyle().Foreground(InfoColor),
		"code":    r.NewStyle().Foreground(PrimaryColor),
	}
}
