package loader

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// decodeYAML parses YAML into a generic tree and maps it onto doc using the
// same field names as JSON. Unknown keys are rejected.
func decodeYAML(data []byte, doc *projectDoc) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to parse YAML model: %w", err)
	}
	if tree == nil {
		return fmt.Errorf("failed to parse YAML model: document is empty")
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      doc,
	})
	if err != nil {
		return fmt.Errorf("failed to create YAML decoder: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("failed to decode YAML model: %w", err)
	}
	return nil
}
