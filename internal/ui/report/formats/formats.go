package formats

import (
	"dupguard/internal/core/config"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/shared/version"
	"path/filepath"
)

// RenderOptions controls presentation only; the scan result is rendered as is.
type RenderOptions struct {
	Styled bool
}

// Render produces the report for format.
func Render(format string, result ports.ScanResult, opts RenderOptions) ([]byte, error) {
	switch format {
	case config.FormatText, "":
		out, err := NewTextGenerator(opts.Styled).Generate(result)
		return []byte(out), err
	case config.FormatMarkdown:
		name := ""
		if result.ProjectRoot != "" {
			name = filepath.Base(result.ProjectRoot)
		}
		out, err := NewMarkdownGenerator().Generate(result, MarkdownReportOptions{
			ProjectName:         name,
			Version:             version.Version,
			GeneratedAt:         result.StartedAt,
			CollapsibleSections: true,
		})
		return []byte(out), err
	case config.FormatTSV:
		out, err := NewTSVGenerator(result.ProjectRoot).Generate(result.Groups)
		return []byte(out), err
	case config.FormatJSON:
		return GenerateJSON(result)
	case config.FormatSARIF:
		data, err := GenerateSARIF(result.ProjectRoot, result.Groups)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported report format"),
			errors.CtxOperation, format,
		)
	}
}
