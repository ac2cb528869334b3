package formats

import (
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/shared/util"
	"fmt"
	"strings"
)

type TSVGenerator struct {
	projectRoot string
}

// NewTSVGenerator writes paths relative to projectRoot when it is set.
func NewTSVGenerator(projectRoot string) *TSVGenerator {
	return &TSVGenerator{projectRoot: projectRoot}
}

func (t *TSVGenerator) Generate(groups []duplicates.Group) (string, error) {
	var buf strings.Builder

	buf.WriteString("Name\tPath\n")
	for _, g := range groups {
		for _, p := range g.Paths {
			buf.WriteString(fmt.Sprintf("%s\t%s\n", tsvField(g.Name), tsvField(util.RelativeSlash(t.projectRoot, p))))
		}
	}

	return buf.String(), nil
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
