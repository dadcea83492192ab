package cmd

import (
	"fmt"
	"os"

	"mcpnode/internal/api"

	"sigs.k8s.io/yaml"
)

// loadItems reads a JSON or YAML list of items. An entry's "params" object
// overrides node parameters for that item and its "json" object is the
// item's data. Without "json" the entry itself, minus "params", is the data.
func loadItems(path string) ([]api.Item, []map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read items file %s: %w", path, err)
	}
	return parseItems(data)
}

func parseItems(data []byte) ([]api.Item, []map[string]any, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, api.NewConfigurationError("items", "items file must be a list of objects: %v", err)
	}

	items := make([]api.Item, len(raw))
	params := make([]map[string]any, len(raw))
	for i, entry := range raw {
		var data, overrides map[string]any
		if p, ok := entry["params"]; ok {
			m, ok := p.(map[string]any)
			if !ok {
				return nil, nil, api.NewConfigurationError("items", "item %d: params must be an object", i)
			}
			overrides = m
		}
		if j, ok := entry["json"]; ok {
			m, ok := j.(map[string]any)
			if !ok {
				return nil, nil, api.NewConfigurationError("items", "item %d: json must be an object", i)
			}
			data = m
		} else {
			data = make(map[string]any, len(entry))
			for k, v := range entry {
				if k != "params" {
					data[k] = v
				}
			}
		}
		items[i] = api.Item{JSON: data}
		params[i] = overrides
	}
	return items, params, nil
}
