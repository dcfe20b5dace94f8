// Package metrics computes derived numeric coaching metrics: transcript base
// metrics, cross-evaluation aggregation (average, range, trend), and the
// dashboard series built from an instructor's history.
//
// The aggregator is the source of truth for all numbers. Narrative analysis
// output may mention metrics, but those values are never trusted for
// aggregation.
package metrics

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var definitionsYAML []byte

// Definition describes one tracked metric: its key in metric maps, display
// metadata, target range, and whether higher values are an improvement
// (nil for range-targeted metrics where neither direction is better).
type Definition struct {
	Key            string   `yaml:"key"`
	DisplayName    string   `yaml:"display_name"`
	Unit           string   `yaml:"unit"`
	TargetMin      *float64 `yaml:"target_min"`
	TargetMax      *float64 `yaml:"target_max"`
	HigherIsBetter *bool    `yaml:"higher_is_better"`
}

var definitions []Definition

func init() {
	var doc struct {
		Metrics []Definition `yaml:"metrics"`
	}
	if err := yaml.Unmarshal(definitionsYAML, &doc); err != nil {
		panic(fmt.Sprintf("parse metric definitions: %v", err))
	}
	definitions = doc.Metrics
}

// Definitions returns the tracked metric definitions in display order.
func Definitions() []Definition {
	return definitions
}

// DefinitionFor looks up one metric by key.
func DefinitionFor(key string) (Definition, bool) {
	for _, d := range definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}
