package formats

import (
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/duplicates"
	"encoding/json"
)

// GenerateJSON renders the scan result as indented JSON. Groups and modules
// are always arrays, never null.
func GenerateJSON(result ports.ScanResult) ([]byte, error) {
	if result.Groups == nil {
		result.Groups = []duplicates.Group{}
	}
	if result.Modules == nil {
		result.Modules = []string{}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
