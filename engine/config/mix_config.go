package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"gopkg.in/yaml.v3"
)

// ErrInvalidMix is returned when a mix entry is missing a clip name.
var ErrInvalidMix = errors.New("invalid mix entry")

// MixConfig is the file form of a crossfade table.
//
//	default_mix: 0.1
//	mixes:
//	  - from: walk
//	    to: run
//	    duration: 0.2
type MixConfig struct {
	DefaultMix float32   `yaml:"default_mix"`
	Mixes      []MixPair `yaml:"mixes"`
}

// MixPair is one ordered (from, to) crossfade duration, referenced by clip name.
type MixPair struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Duration float32 `yaml:"duration"`
}

// ParseMixConfig decodes and validates a YAML mix table.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *MixConfig: the decoded table
//   - error: a decode error, or ErrInvalidMix if an entry is missing a clip name
func ParseMixConfig(data []byte) (*MixConfig, error) {
	var cfg MixConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mix config: %w", err)
	}

	for i, m := range cfg.Mixes {
		if m.From == "" || m.To == "" {
			return nil, fmt.Errorf("%w: #%d needs both 'from' and 'to'", ErrInvalidMix, i)
		}
	}
	return &cfg, nil
}

// LoadMixConfig reads and parses a YAML mix table from disk.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *MixConfig: the decoded table
//   - error: a read, decode or validation error
func LoadMixConfig(path string) (*MixConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mix config %s: %w", path, err)
	}
	cfg, err := ParseMixConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Apply resolves every clip name against the state data's catalog and replaces its whole mix
// table with the configured one. If any name fails to resolve the state data is left unchanged.
//
// Parameters:
//   - data: the state data to update
//
// Returns:
//   - error: an error wrapping animator.ErrClipNotFound or animator.ErrNilCatalog
func (c *MixConfig) Apply(data *animator.StateData) error {
	if data == nil {
		return animator.ErrNilStateData
	}

	entries := make([]animator.MixEntry, 0, len(c.Mixes))
	for _, m := range c.Mixes {
		from, err := data.FindClip(m.From)
		if err != nil {
			return fmt.Errorf("mix %s -> %s: %w", m.From, m.To, err)
		}
		to, err := data.FindClip(m.To)
		if err != nil {
			return fmt.Errorf("mix %s -> %s: %w", m.From, m.To, err)
		}
		entries = append(entries, animator.MixEntry{From: from, To: to, Duration: m.Duration})
	}

	data.ReplaceMixes(c.DefaultMix, entries)
	return nil
}

// Reload loads the mix table at path and applies it to data.
//
// Parameters:
//   - path: the YAML file to load
//   - data: the state data to update
//
// Returns:
//   - error: any load or apply error; data is unchanged on error
func Reload(path string, data *animator.StateData) error {
	cfg, err := LoadMixConfig(path)
	if err != nil {
		return err
	}
	return cfg.Apply(data)
}
