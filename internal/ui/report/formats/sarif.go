package formats

import (
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/shared/util"
	"dupguard/internal/shared/version"
	"encoding/json"
	"fmt"
	"strings"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDDuplicate = "DUP001"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

// GenerateSARIF builds a SARIF v2.1.0 document with one result per duplicate
// group. Every member of the group is a location. File URIs are made relative
// to projectRoot so that reports are safe to share.
func GenerateSARIF(projectRoot string, groups []duplicates.Group) ([]byte, error) {
	results := make([]sarifResult, 0, len(groups))
	for _, g := range groups {
		locations := make([]sarifLocation, 0, len(g.Paths))
		rel := make([]string, 0, len(g.Paths))
		for _, p := range g.Paths {
			uri := util.RelativeSlash(projectRoot, p)
			rel = append(rel, uri)
			locations = append(locations, sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       uri,
						URIBaseID: "%SRCROOT%",
					},
				},
			})
		}
		results = append(results, sarifResult{
			RuleID: ruleIDDuplicate,
			Level:  "error",
			Message: sarifMessage{Text: fmt.Sprintf(
				"Duplicate file name %q appears %d times: %s", g.Name, len(g.Paths), strings.Join(rel, ", "),
			)},
			Locations: locations,
		})
	}

	rules := make([]sarifRule, 0, 1)
	if len(groups) > 0 {
		rules = append(rules, sarifRule{
			ID:               ruleIDDuplicate,
			Name:             "DuplicateFileName",
			ShortDescription: sarifMessage{Text: "Two or more source files share a base file name and would collide after obfuscation."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "dupguard",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}
