package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"sigs.k8s.io/yaml"

	mgerrors "github.com/jacoelho/modelgraph/errors"
)

// Config is the YAML pipeline configuration.
type Config struct {
	Transformers []TransformerConfig `json:"transformers"`
}

// TransformerConfig configures one step.
type TransformerConfig struct {
	Parameters map[string]any  `json:"parameters,omitempty"`
	Unit       string          `json:"unit"`
	ID         string          `json:"id,omitempty"`
	Rules      []string        `json:"rules,omitempty"`
	Advanced   json.RawMessage `json:"advanced,omitempty"`
}

// ParseConfig decodes a YAML pipeline configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline configuration: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and decodes the pipeline configuration at name.
func LoadConfig(fsys fs.FS, name string) (*Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read pipeline configuration: %w", err)
	}
	return ParseConfig(data)
}

// StepConfig converts the transformer configuration into a step
// configuration. Scalar parameters are kept as text; list parameters are
// joined with commas. A null parameter counts as absent.
func (t TransformerConfig) StepConfig() *StepConfig {
	rules := make([]Rule, 0, len(t.Rules))
	for _, r := range t.Rules {
		rules = append(rules, Rule(r))
	}
	values := make(map[string]string, len(t.Parameters))
	for k, v := range t.Parameters {
		if v == nil {
			continue
		}
		values[k] = paramText(v)
	}
	cfg := NewStepConfig(rules, values)
	cfg.ID = t.ID
	cfg.Advanced = t.Advanced
	return cfg
}

func paramText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, paramText(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}

// Build creates a pipeline from cfg using the units in reg. A step naming
// an unknown unit is reported and left out.
func Build(cfg *Config, reg *Registry, sink *mgerrors.Sink) *Pipeline {
	p := New()
	for i, t := range cfg.Transformers {
		u, ok := reg.Lookup(t.Unit)
		if !ok {
			label := t.ID
			if label == "" {
				label = fmt.Sprintf("transformers[%d]", i)
			}
			sink.Errorf(mgerrors.ErrInvalidConfiguration, label,
				"unknown unit %q, known units: %s", t.Unit, strings.Join(reg.Names(), ", "))
			continue
		}
		p.Add(u, t.StepConfig())
	}
	return p
}
