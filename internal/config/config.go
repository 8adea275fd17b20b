// Package config loads the one piece of runtime configuration spec.md §4.3
// and §6 explicitly allow an implementer to change: the cost-model weights
// and the bump allocator's heap-head RAM address. Everything else about the
// core is a deterministic pure function of (initial, goal) and has no knob
// (SPEC_FULL.md §B.2).
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"tailforge/internal/bump"
	"tailforge/internal/cost"
)

// Config is the full set of tunables a document can override.
type Config struct {
	SizeWeight  uint64 `yaml:"size_weight"`
	CycleWeight uint64 `yaml:"cycle_weight"`
	HeapHead    uint32 `yaml:"heap_head"`
}

// Default returns the built-in configuration: spec.md §4.3's
// cost(t) = size(t)*10000 + cycles(t), and the bump allocator's default
// heap-head address.
func Default() Config {
	return Config{
		SizeWeight:  cost.Default.Size,
		CycleWeight: cost.Default.Cycles,
		HeapHead:    bump.DefaultHeapHead,
	}
}

// Weights returns the cost.Weights this Config describes.
func (c Config) Weights() cost.Weights {
	return cost.Weights{Size: c.SizeWeight, Cycles: c.CycleWeight}
}

// BumpContract returns the bump.Contract this Config describes.
func (c Config) BumpContract() bump.Contract {
	return bump.Contract{HeapHead: c.HeapHead}
}

// Load reads a YAML document from path and overlays it onto Default: a
// field absent from the document keeps its default value. A missing file
// is not an error — it returns Default() unchanged, matching §B.2's
// "missing file ⇒ built-in defaults".
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	// Decode into a separate struct with pointer fields so "absent from
	// the document" is distinguishable from "present but zero".
	var overlay struct {
		SizeWeight  *uint64 `yaml:"size_weight"`
		CycleWeight *uint64 `yaml:"cycle_weight"`
		HeapHead    *uint32 `yaml:"heap_head"`
	}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Config{}, err
	}

	if overlay.SizeWeight != nil {
		cfg.SizeWeight = *overlay.SizeWeight
	}
	if overlay.CycleWeight != nil {
		cfg.CycleWeight = *overlay.CycleWeight
	}
	if overlay.HeapHead != nil {
		cfg.HeapHead = *overlay.HeapHead
	}
	return cfg, nil
}
