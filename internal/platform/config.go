package platform

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EvolutionProperties is the typed shape of a run's YAML configuration
// file: everything evolveForXGenerations or the live evolver need, plus
// which store backend to persist through. Zero values mean "caller
// default" — the *OrDefault accessors resolve them.
type EvolutionProperties struct {
	RunID      string `yaml:"run_id"`
	StoreKind  string `yaml:"store_kind"`
	SQLitePath string `yaml:"sqlite_path"`

	Scenario           string  `yaml:"scenario"`
	PopulationSize     int     `yaml:"population_size"`
	Generations        int     `yaml:"generations"`
	MaxThinkCycles     int     `yaml:"max_think_cycles"`
	SelectionDivisor   int     `yaml:"selection_divisor"`
	ThinkTimeoutMS     int     `yaml:"think_timeout_ms"`
	AsyncScoring       bool    `yaml:"async_scoring"`
	InitialWeightRange float64 `yaml:"initial_weight_range"`
	Seed               int64   `yaml:"seed"`
}

// LoadEvolutionProperties reads and parses a YAML configuration file.
func LoadEvolutionProperties(path string) (EvolutionProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvolutionProperties{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var props EvolutionProperties
	if err := yaml.Unmarshal(data, &props); err != nil {
		return EvolutionProperties{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return props, nil
}

func (p EvolutionProperties) PopulationSizeOrDefault() int {
	if p.PopulationSize > 0 {
		return p.PopulationSize
	}
	return 50
}

func (p EvolutionProperties) GenerationsOrDefault() int {
	if p.Generations > 0 {
		return p.Generations
	}
	return 100
}

func (p EvolutionProperties) MaxThinkCyclesOrDefault() int {
	if p.MaxThinkCycles > 0 {
		return p.MaxThinkCycles
	}
	return 20
}

func (p EvolutionProperties) SelectionDivisorOrDefault() int {
	if p.SelectionDivisor > 0 {
		return p.SelectionDivisor
	}
	return 2
}

func (p EvolutionProperties) ThinkTimeoutOrDefault() time.Duration {
	if p.ThinkTimeoutMS > 0 {
		return time.Duration(p.ThinkTimeoutMS) * time.Millisecond
	}
	return 2 * time.Second
}

func (p EvolutionProperties) InitialWeightRangeOrDefault() float64 {
	if p.InitialWeightRange > 0 {
		return p.InitialWeightRange
	}
	return 1.0
}

func (p EvolutionProperties) ScenarioOrDefault() string {
	if p.Scenario != "" {
		return p.Scenario
	}
	return "xor"
}
