package formats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))
)

// TextGenerator writes a sectioned summary meant for a terminal.
type TextGenerator struct {
	color bool
}

func NewTextGenerator(color bool) *TextGenerator {
	return &TextGenerator{color: color}
}

func (g *TextGenerator) Generate(data Data) (string, error) {
	res := data.Result

	var b strings.Builder
	b.WriteString(g.style(headingStyle, "utoipauto"))
	b.WriteString(g.style(countStyle, fmt.Sprintf(" %d files scanned", res.Files)))
	b.WriteString("\n")

	g.section(&b, "Paths", res.Functions)
	g.section(&b, "Schemas", res.Schemas)
	g.section(&b, "Responses", res.Responses)

	if data.Changes != nil {
		b.WriteString("\n")
		b.WriteString(g.style(headingStyle, "Changes since last run"))
		b.WriteString(g.style(countStyle, fmt.Sprintf(" (+%d -%d)", len(data.Changes.Added), len(data.Changes.Removed))))
		b.WriteString("\n")
		for _, e := range data.Changes.Added {
			b.WriteString("  ")
			b.WriteString(g.style(addedStyle, fmt.Sprintf("+ %s %s", e.Bucket, e.Name)))
			b.WriteString("\n")
		}
		for _, e := range data.Changes.Removed {
			b.WriteString("  ")
			b.WriteString(g.style(removedStyle, fmt.Sprintf("- %s %s", e.Bucket, e.Name)))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (g *TextGenerator) section(b *strings.Builder, title string, names []string) {
	b.WriteString("\n")
	b.WriteString(g.style(headingStyle, title))
	b.WriteString(g.style(countStyle, fmt.Sprintf(" (%d)", len(names))))
	b.WriteString("\n")
	if len(names) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, name := range names {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString("\n")
	}
}

func (g *TextGenerator) style(s lipgloss.Style, text string) string {
	if !g.color {
		return text
	}
	return s.Render(text)
}
