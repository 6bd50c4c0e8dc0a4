package store

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bulletml/internal/sim"
)

// marshalConfig stores a sim.Config as YAML, the same shape scenario files
// use.
func marshalConfig(cfg sim.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func unmarshalConfig(s string) (sim.Config, error) {
	var cfg sim.Config
	if err := yaml.Unmarshal([]byte(s), &cfg); err != nil {
		return sim.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// SQLite integers are signed; seeds round-trip through int64 bit patterns.
func seedToDB(seed uint64) int64 { return int64(seed) }
func seedFromDB(v int64) uint64  { return uint64(v) }
