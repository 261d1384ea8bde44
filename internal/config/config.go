// Package config provides configuration loading and management for paradigm.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jward/paradigm/internal/cluster"
)

// Config represents the complete paradigm configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

// ExtractionConfig configures corpus discovery and feature extraction
type ExtractionConfig struct {
	// Languages restricts ingestion to these tags (empty = all)
	Languages []string `yaml:"languages"`
	// Include and Exclude are doublestar globs matched against paths
	// relative to the indexed root (empty Include = everything)
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	// MaxFileSize skips files larger than this many bytes (0 = no limit,
	// unset = DefaultMaxFileSize)
	MaxFileSize *int64 `yaml:"max_file_size"`
	// Patterns is a .yaml/.yml table, a .risor script, or builtin:<name>
	// (empty = the reference table)
	Patterns string `yaml:"patterns"`
	// Parallel enables the worker-pool pipeline (unset = true)
	Parallel *bool `yaml:"parallel"`
}

// SizeLimit returns the per-file size limit in bytes.
func (e ExtractionConfig) SizeLimit() int64 {
	if e.MaxFileSize == nil {
		return DefaultMaxFileSize
	}
	return *e.MaxFileSize
}

// ParallelEnabled reports whether the parallel pipeline is on.
func (e ExtractionConfig) ParallelEnabled() bool {
	return e.Parallel == nil || *e.Parallel
}

// AnalysisConfig configures clustering and embedding
type AnalysisConfig struct {
	K          int   `yaml:"k"`
	CandidateK []int `yaml:"candidate_k"`
	// Seed and Tolerance are pointers because zero is a valid setting
	Seed            *uint64  `yaml:"seed"`
	NInit           int      `yaml:"n_init"`
	MaxIter         int      `yaml:"max_iter"`
	Tolerance       *float64 `yaml:"tolerance"`
	Perplexity      float64  `yaml:"perplexity"`
	EmbedIterations int      `yaml:"embed_iterations"`
}

// Params converts the analysis settings into cluster parameters. Unset
// Seed and Tolerance fall back to the cluster defaults.
func (a AnalysisConfig) Params() cluster.Params {
	p := cluster.Params{
		Seed:            cluster.DefaultParams().Seed,
		NInit:           a.NInit,
		MaxIter:         a.MaxIter,
		Tolerance:       cluster.DefaultParams().Tolerance,
		Perplexity:      a.Perplexity,
		EmbedIterations: a.EmbedIterations,
	}
	if a.Seed != nil {
		p.Seed = *a.Seed
	}
	if a.Tolerance != nil {
		p.Tolerance = *a.Tolerance
	}
	return p
}

// DefaultMaxFileSize is the default per-file size limit in bytes.
const DefaultMaxFileSize = 1_000_000

// DefaultConfig returns a Config with the reference analysis settings
func DefaultConfig() *Config {
	p := cluster.DefaultParams()
	maxSize := int64(DefaultMaxFileSize)
	return &Config{
		Extraction: ExtractionConfig{
			MaxFileSize: &maxSize,
		},
		Analysis: AnalysisConfig{
			K:               3,
			CandidateK:      []int{2, 3, 4, 5, 6},
			Seed:            &p.Seed,
			NInit:           p.NInit,
			MaxIter:         p.MaxIter,
			Tolerance:       &p.Tolerance,
			Perplexity:      p.Perplexity,
			EmbedIterations: p.EmbedIterations,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Extraction.SizeLimit() < 0 {
		return fmt.Errorf("extraction.max_file_size must be non-negative")
	}
	for _, g := range append(append([]string(nil), c.Extraction.Include...), c.Extraction.Exclude...) {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("extraction: invalid glob %q", g)
		}
	}
	if err := validatePatternsRef(c.Extraction.Patterns); err != nil {
		return err
	}

	a := c.Analysis
	if a.K < 2 {
		return fmt.Errorf("analysis.k must be at least 2, got %d", a.K)
	}
	for i, k := range a.CandidateK {
		if k < 2 {
			return fmt.Errorf("analysis.candidate_k: %d is below 2", k)
		}
		if i > 0 && k <= a.CandidateK[i-1] {
			return fmt.Errorf("analysis.candidate_k must be strictly ascending, got %v", a.CandidateK)
		}
	}
	if err := a.Params().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// BuiltinPrefix marks a patterns reference to a bundled script.
const BuiltinPrefix = "builtin:"

func validatePatternsRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, BuiltinPrefix) {
		return nil
	}
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".yaml", ".yml", ".risor":
		return nil
	}
	return fmt.Errorf("extraction.patterns: %q must be a .yaml, .yml or .risor file", ref)
}

// LoadFromFile loads a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := loadLayer(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// loadLayer reads only the keys set in path; everything else stays zero so
// Merge leaves lower layers alone.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one. Set fields of other win: nil
// pointers, empty slices and zero scalars count as unset.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Extraction
	if len(other.Extraction.Languages) > 0 {
		c.Extraction.Languages = other.Extraction.Languages
	}
	if len(other.Extraction.Include) > 0 {
		c.Extraction.Include = other.Extraction.Include
	}
	if len(other.Extraction.Exclude) > 0 {
		c.Extraction.Exclude = other.Extraction.Exclude
	}
	if other.Extraction.MaxFileSize != nil {
		v := *other.Extraction.MaxFileSize
		c.Extraction.MaxFileSize = &v
	}
	if other.Extraction.Patterns != "" {
		c.Extraction.Patterns = other.Extraction.Patterns
	}
	if other.Extraction.Parallel != nil {
		v := *other.Extraction.Parallel
		c.Extraction.Parallel = &v
	}

	// Analysis
	if other.Analysis.K != 0 {
		c.Analysis.K = other.Analysis.K
	}
	if len(other.Analysis.CandidateK) > 0 {
		c.Analysis.CandidateK = other.Analysis.CandidateK
	}
	if other.Analysis.Seed != nil {
		v := *other.Analysis.Seed
		c.Analysis.Seed = &v
	}
	if other.Analysis.NInit != 0 {
		c.Analysis.NInit = other.Analysis.NInit
	}
	if other.Analysis.MaxIter != 0 {
		c.Analysis.MaxIter = other.Analysis.MaxIter
	}
	if other.Analysis.Tolerance != nil {
		v := *other.Analysis.Tolerance
		c.Analysis.Tolerance = &v
	}
	if other.Analysis.Perplexity != 0 {
		c.Analysis.Perplexity = other.Analysis.Perplexity
	}
	if other.Analysis.EmbedIterations != 0 {
		c.Analysis.EmbedIterations = other.Analysis.EmbedIterations
	}
}

// LoadPatternsYAML reads a pattern table file: a mapping of language tag to
// a list of pattern strings.
func LoadPatternsYAML(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}
	var m map[string][]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("pattern file %s defines no languages", path)
	}
	return m, nil
}
