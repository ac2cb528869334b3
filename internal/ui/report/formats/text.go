package formats

import (
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/shared/util"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	textHeading = "Duplicate file names found:"
	textClean   = "No duplicate file names found."
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type TextGenerator struct {
	styled bool
}

// NewTextGenerator renders plain text unless styled is set, in which case
// the heading and summary go through lipgloss.
func NewTextGenerator(styled bool) *TextGenerator {
	return &TextGenerator{styled: styled}
}

func (t *TextGenerator) Generate(result ports.ScanResult) (string, error) {
	var b strings.Builder

	if len(result.Groups) == 0 {
		b.WriteString(t.render(cleanStyle, textClean))
		b.WriteString("\n")
		b.WriteString(t.render(summaryStyle, t.summary(result)))
		b.WriteString("\n")
		return b.String(), nil
	}

	b.WriteString(t.render(headingStyle, textHeading))
	b.WriteString("\n")
	for _, g := range result.Groups {
		b.WriteString(groupTable(result.ProjectRoot, g))
		b.WriteString("\n")
	}
	b.WriteString(t.render(summaryStyle, t.summary(result)))
	b.WriteString("\n")
	return b.String(), nil
}

func groupTable(projectRoot string, g duplicates.Group) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{g.Name})
	for _, p := range g.Paths {
		tbl.AppendRow(table.Row{util.RelativeSlash(projectRoot, p)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d files", len(g.Paths))})

	return tbl.Render()
}

func (t *TextGenerator) summary(result ports.ScanResult) string {
	names, paths := duplicates.Summary(result.Groups)
	return fmt.Sprintf("%s (%s): %d modules, %d files, %d duplicate names across %d files",
		result.RootModule, result.Variant, len(result.Modules), result.FilesScanned, names, paths)
}

func (t *TextGenerator) render(style lipgloss.Style, s string) string {
	if !t.styled {
		return s
	}
	return style.Render(s)
}
