package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML-decodable shape; Config itself exposes a resolved
// map for DistinctReadingTypes, which doesn't round-trip cleanly through
// YAML sequences, so the file format uses a plain string list instead.
type fileConfig struct {
	DistinctReadingTypes []string `yaml:"distinct_reading_types"`
	DropAmbiguous        bool     `yaml:"drop_ambiguous"`
	MergeSplits          bool     `yaml:"merge_splits"`
	ExtancyThreshold     int      `yaml:"extancy_threshold"`
	Connectivity         int      `yaml:"connectivity"`
}

// LoadFile decodes a Config from a YAML file at path, applying the same
// deterministic defaults New does for any field the file omits.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: LoadFile(%s): %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: LoadFile(%s): decode: %w", path, err)
	}

	return New(
		WithDistinctReadingTypes(fc.DistinctReadingTypes...),
		WithDropAmbiguous(fc.DropAmbiguous),
		WithMergeSplits(fc.MergeSplits),
		WithExtancyThreshold(fc.ExtancyThreshold),
		WithConnectivity(fc.Connectivity),
	), nil
}
