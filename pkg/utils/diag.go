package utils

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"r9cc/pkg/compiler"
)

var (
	ColorError = lipgloss.Color("#EF4444") // Red
	ColorMuted = lipgloss.Color("#6B7280") // Gray
	ColorTitle = lipgloss.Color("#8B5CF6") // Violet

	ErrorLabelStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SnippetStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorTitle).
			Bold(true)
)

// PrintError writes err as a styled diagnostic.
func PrintError(w io.Writer, tool string, err error) {
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		fmt.Fprintf(w, "%s %s: %v\n", ErrorLabelStyle.Render("error:"), tool, err)
		return
	}

	head, snippet, _ := strings.Cut(ce.Error(), "\n")
	fmt.Fprintf(w, "%s %s: %s\n", ErrorLabelStyle.Render("error:"), tool, head)
	if snippet != "" {
		fmt.Fprintln(w, SnippetStyle.Render(snippet))
	}
}

// Section renders a dump heading.
func Section(title string) string {
	return SectionStyle.Render(title)
}
