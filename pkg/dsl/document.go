package dsl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Definition is a graph description plus an optional initial state.
type Definition struct {
	StartNode    string                 `json:"start_node" yaml:"start_node" mapstructure:"start_node"`
	Edges        map[string]domain.Edge `json:"edges" yaml:"edges" mapstructure:"edges"`
	InitialState domain.State           `json:"initial_state,omitempty" yaml:"initial_state,omitempty" mapstructure:"initial_state"`
}

// Parse decodes a YAML or JSON definition document.
// Unknown keys are rejected so typos like "if_ture" do not silently terminate runs.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]any
	// JSON is valid YAML, one decoder covers both.
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("graph document is empty")
	}

	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &def,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}

	if def.StartNode == "" {
		return nil, fmt.Errorf("graph document is missing start_node")
	}
	if def.Edges == nil {
		def.Edges = map[string]domain.Edge{}
	}
	if def.InitialState == nil {
		def.InitialState = domain.NewState()
	}
	return &def, nil
}

// Load reads and parses a definition document from path.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph document: %w", err)
	}
	return Parse(data)
}

// ParseState decodes a JSON object into a State. An empty string yields an empty state.
func ParseState(s string) (domain.State, error) {
	state := domain.NewState()
	if s == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(s), &state); err != nil {
		return nil, fmt.Errorf("invalid state JSON: %w", err)
	}
	return state, nil
}

// Marshal encodes the definition as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
