package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is a roster definition file. It names the members in order
// and optionally overrides the static judge priors.
//
//	members:
//	  - provider: openai
//	    model: gpt-5-nano
//	  - provider: anthropic
//	    model: claude-haiku-4-5
//	priors:
//	  openai: 1.00
//	  anthropic: 0.95
type Definition struct {
	Members []Member           `yaml:"members"`
	Priors  map[string]float64 `yaml:"priors,omitempty"`
}

// LoadFile reads a roster definition from a YAML file and builds the
// indexed roster.
func LoadFile(path string) ([]ModelInfo, map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read roster file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}

	roster, err := Build(def.Members)
	if err != nil {
		return nil, nil, err
	}
	return roster, def.Priors, nil
}
