package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Project constraints
	MaxNodesPerProject int
	MaxEdgesPerProject int
	DefaultProjectName string
	MaxNameLength      int

	// Node constraints
	MaxTextLength         int
	MaxInstructionsLength int

	// Edge constraints
	AllowDuplicateEdges bool

	// Generation constraints
	MaxBatchGenerations   int
	GenerationConcurrency int
	GenerationTimeout     time.Duration
	WriteBackRetries      int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerProject: 10000,
		MaxEdgesPerProject: 50000,
		DefaultProjectName: "Untitled",
		MaxNameLength:      200,

		MaxTextLength:         200000,
		MaxInstructionsLength: 10000,

		AllowDuplicateEdges: false,

		MaxBatchGenerations:   16,
		GenerationConcurrency: 4,
		GenerationTimeout:     5 * time.Minute,
		WriteBackRetries:      3,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodesPerProject = 5000
	config.MaxEdgesPerProject = 25000
	config.MaxBatchGenerations = 8

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodesPerProject = 100000
	config.MaxEdgesPerProject = 500000
	config.AllowDuplicateEdges = true

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	switch {
	case c.MaxNodesPerProject <= 0:
		return fmt.Errorf("max nodes per project must be positive")
	case c.MaxEdgesPerProject <= 0:
		return fmt.Errorf("max edges per project must be positive")
	case c.MaxNameLength <= 0:
		return fmt.Errorf("max name length must be positive")
	case c.GenerationConcurrency <= 0:
		return fmt.Errorf("generation concurrency must be positive")
	case c.MaxBatchGenerations <= 0:
		return fmt.Errorf("max batch generations must be positive")
	case c.WriteBackRetries < 1:
		return fmt.Errorf("write-back retries must be at least 1")
	}
	return nil
}
