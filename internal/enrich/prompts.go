package enrich

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the instruction templates for every generation kind.
type Prompts struct {
	Summary struct {
		System   string            `yaml:"system"`
		User     string            `yaml:"user"`
		Length   map[string]string `yaml:"length"`
		Accuracy map[string]string `yaml:"accuracy"`
	} `yaml:"summary"`
	Schema struct {
		System string            `yaml:"system"`
		User   string            `yaml:"user"`
		Styles map[string]string `yaml:"styles"`
	} `yaml:"schema"`
	Chat struct {
		System          string `yaml:"system"`
		DocumentContext string `yaml:"document_context"`
		ExtraContext    string `yaml:"extra_context"`
	} `yaml:"chat"`
}

// LoadPrompts parses the embedded templates and checks every option has an instruction.
func LoadPrompts() (*Prompts, error) {
	return parsePrompts(promptsYAML)
}

func parsePrompts(raw []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	for _, l := range []Length{LengthBrief, LengthMedium, LengthDetailed} {
		if strings.TrimSpace(p.Summary.Length[string(l)]) == "" {
			return nil, fmt.Errorf("prompts: missing summary length %q", l)
		}
	}
	for _, a := range []Accuracy{AccuracyStandard, AccuracyHigh} {
		if strings.TrimSpace(p.Summary.Accuracy[string(a)]) == "" {
			return nil, fmt.Errorf("prompts: missing summary accuracy %q", a)
		}
	}
	for _, s := range []SchemaStyle{SchemaBrainstorm, SchemaCascade} {
		if strings.TrimSpace(p.Schema.Styles[string(s)]) == "" {
			return nil, fmt.Errorf("prompts: missing schema style %q", s)
		}
	}
	if strings.TrimSpace(p.Summary.System) == "" || strings.TrimSpace(p.Schema.System) == "" || strings.TrimSpace(p.Chat.System) == "" {
		return nil, fmt.Errorf("prompts: missing system template")
	}
	return &p, nil
}

// fill substitutes {{key}} placeholders in a single pass, so values are never re-expanded.
func fill(tmpl string, kv ...string) string {
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{{"+kv[i]+"}}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
