package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
)

// Overlay is the hot-reloadable part of the configuration, read from a
// YAML file: the model catalog and optional limit overrides.
type Overlay struct {
	Models []ModelSpec     `yaml:"models"`
	Limits *LimitsOverlay  `yaml:"limits,omitempty"`
	Meta   OverlayMetadata `yaml:"metadata,omitempty"`
}

// ModelSpec declares one catalog entry.
type ModelSpec struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label,omitempty"`
	Provider   string `yaml:"provider"`
	Capability string `yaml:"capability"`
	Default    bool   `yaml:"default,omitempty"`
	// Upstream is the provider's own model name when it differs from ID.
	Upstream string `yaml:"upstream,omitempty"`
	// BaseURL overrides the provider endpoint for this model.
	BaseURL string `yaml:"baseUrl,omitempty"`
	// APIKeyEnv names the environment variable holding this model's key.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
}

// LimitsOverlay overrides domain limits. Zero fields keep the current value.
type LimitsOverlay struct {
	MaxNodesPerProject    int           `yaml:"maxNodesPerProject,omitempty"`
	MaxEdgesPerProject    int           `yaml:"maxEdgesPerProject,omitempty"`
	MaxBatchGenerations   int           `yaml:"maxBatchGenerations,omitempty"`
	GenerationConcurrency int           `yaml:"generationConcurrency,omitempty"`
	GenerationTimeout     time.Duration `yaml:"generationTimeout,omitempty"`
}

// OverlayMetadata holds metadata about the overlay file
type OverlayMetadata struct {
	Version string `yaml:"version,omitempty"`
}

// LoadOverlay reads and validates an overlay file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}
	return ParseOverlay(data)
}

// ParseOverlay decodes and validates overlay YAML.
func ParseOverlay(data []byte) (*Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse overlay YAML: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Meta.Version == "" {
		o.Meta.Version = "1"
	}
	return &o, nil
}

// Validate checks the overlay for obvious mistakes. Catalog-level rules
// (duplicate ids, one default per capability) are enforced when the
// catalog is built.
func (o *Overlay) Validate() error {
	for i, m := range o.Models {
		if m.ID == "" {
			return fmt.Errorf("models[%d]: id is required", i)
		}
		if m.Provider == "" {
			return fmt.Errorf("model %s: provider is required", m.ID)
		}
		if m.Capability == "" {
			return fmt.Errorf("model %s: capability is required", m.ID)
		}
	}
	if l := o.Limits; l != nil {
		if l.MaxNodesPerProject < 0 || l.MaxEdgesPerProject < 0 || l.MaxBatchGenerations < 0 || l.GenerationConcurrency < 0 {
			return fmt.Errorf("limits cannot be negative")
		}
	}
	return nil
}

// ApplyLimits returns a copy of base with the overlay's limits applied.
func (o *Overlay) ApplyLimits(base *domainconfig.DomainConfig) *domainconfig.DomainConfig {
	out := *base
	if o == nil || o.Limits == nil {
		return &out
	}
	l := o.Limits
	if l.MaxNodesPerProject > 0 {
		out.MaxNodesPerProject = l.MaxNodesPerProject
	}
	if l.MaxEdgesPerProject > 0 {
		out.MaxEdgesPerProject = l.MaxEdgesPerProject
	}
	if l.MaxBatchGenerations > 0 {
		out.MaxBatchGenerations = l.MaxBatchGenerations
	}
	if l.GenerationConcurrency > 0 {
		out.GenerationConcurrency = l.GenerationConcurrency
	}
	if l.GenerationTimeout > 0 {
		out.GenerationTimeout = l.GenerationTimeout
	}
	return &out
}
