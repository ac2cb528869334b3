package formats

import (
	"dupguard/internal/core/ports"
	"dupguard/internal/shared/util"
	"fmt"
	"strings"
	"time"
)

type MarkdownReportOptions struct {
	ProjectName         string
	Version             string
	GeneratedAt         time.Time
	CollapsibleSections bool
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(result ports.ScanResult, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Duplicate File Name Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Root Module | `%s` |\n", result.RootModule))
	b.WriteString(fmt.Sprintf("| Variant | `%s` |\n", result.Variant))
	b.WriteString(fmt.Sprintf("| Modules Scanned | %d |\n", len(result.Modules)))
	b.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", result.FilesScanned))
	b.WriteString(fmt.Sprintf("| Duplicate Names | %d |\n\n", len(result.Groups)))

	b.WriteString("## Duplicate file names\n")
	if len(result.Groups) == 0 {
		b.WriteString("No duplicate file names found.\n")
		return b.String(), nil
	}

	for _, g := range result.Groups {
		rows := make([]string, 0, len(g.Paths))
		for _, p := range g.Paths {
			rows = append(rows, fmt.Sprintf("- `%s`\n", util.RelativeSlash(result.ProjectRoot, p)))
		}
		m.writeListWithCollapse(
			&b,
			fmt.Sprintf("### `%s` (%d)\n", g.Name, len(g.Paths)),
			opts.CollapsibleSections,
			len(rows) > 10,
			rows,
		)
	}
	return b.String(), nil
}

func (m *MarkdownGenerator) writeListWithCollapse(
	b *strings.Builder,
	heading string,
	collapsible bool,
	collapse bool,
	rows []string,
) {
	b.WriteString(heading)
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString(fmt.Sprintf("<summary>%d paths</summary>\n\n", len(rows)))
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
