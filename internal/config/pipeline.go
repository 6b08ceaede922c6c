// Package config loads the optional JSON pipeline configuration.
//
// Flags always win; the config file only supplies defaults shared across a
// cohort of batch runs. Fields omitted from the JSON keep their built-in
// defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// PipelineConfig is the root configuration for the batch pipeline.
type PipelineConfig struct {
	// Jobs bounds worker-pool parallelism for the parallel stages.
	Jobs *int `json:"jobs,omitempty"`

	// RadialIndices is the default whitelist/target set for the radial
	// filter and splitter.
	RadialIndices []int `json:"radial_indices,omitempty"`

	// Cohort names the dataset batch; it suffixes the dedup audit file.
	Cohort *string `json:"cohort,omitempty"`

	// LedgerPath points at the optional SQLite run ledger.
	LedgerPath *string `json:"ledger_path,omitempty"`
}

// EmptyPipelineConfig returns a PipelineConfig with all fields unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The path must
// have a .json extension and stay under the size cap.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks ranges. Radial indices are grid positions, so they must
// sit inside [1, 32].
func (c *PipelineConfig) Validate() error {
	if c.Jobs != nil && *c.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1, got %d", *c.Jobs)
	}
	for _, k := range c.RadialIndices {
		if k < 1 || k > 32 {
			return fmt.Errorf("radial index %d out of range [1, 32]", k)
		}
	}
	return nil
}

// GetJobs returns the configured worker count or NumCPU.
func (c *PipelineConfig) GetJobs() int {
	if c != nil && c.Jobs != nil {
		return *c.Jobs
	}
	return runtime.NumCPU()
}

// GetCohort returns the configured cohort label or the fallback.
func (c *PipelineConfig) GetCohort(fallback string) string {
	if c != nil && c.Cohort != nil && *c.Cohort != "" {
		return *c.Cohort
	}
	return fallback
}

// GetLedgerPath returns the configured ledger path, or "" when the ledger
// is disabled.
func (c *PipelineConfig) GetLedgerPath() string {
	if c != nil && c.LedgerPath != nil {
		return *c.LedgerPath
	}
	return ""
}
