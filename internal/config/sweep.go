package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical sweep defaults file.
const DefaultConfigPath = "config/sweep.defaults.json"

// SweepConfig is the JSON configuration for a radius sweep. Every field is
// optional; the Get* methods supply the standard defaults for anything
// left unset, so partial files are safe.
type SweepConfig struct {
	// Radius range, half-open [radius_min, radius_max).
	RadiusMin  *float64 `json:"radius_min,omitempty"`
	RadiusMax  *float64 `json:"radius_max,omitempty"`
	RadiusStep *float64 `json:"radius_step,omitempty"`

	// Accepted samples per radius.
	Samples *int `json:"samples,omitempty"`

	// Random source. A nil seed means one is derived from the clock.
	Seed *uint64 `json:"seed,omitempty"`
	// Optional cap on draws per radius; 0 disables it.
	MaxDraws *int `json:"max_draws,omitempty"`

	// Outputs
	Output   *string `json:"output,omitempty"`
	DBPath   *string `json:"db_path,omitempty"`
	PNGPath  *string `json:"png_path,omitempty"`
	HTMLPath *string `json:"html_path,omitempty"`

	ProgressInterval *string `json:"progress_interval,omitempty"` // duration string like "10s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySweepConfig returns a SweepConfig with all fields set to nil.
func EmptySweepConfig() *SweepConfig {
	return &SweepConfig{}
}

// DefaultSweepConfig returns a SweepConfig with every field populated with
// the standard sweep: radii 0 to 100 in steps of 0.01, 1000 samples each.
func DefaultSweepConfig() *SweepConfig {
	return &SweepConfig{
		RadiusMin:        ptrFloat64(0),
		RadiusMax:        ptrFloat64(100),
		RadiusStep:       ptrFloat64(0.01),
		Samples:          ptrInt(1000),
		MaxDraws:         ptrInt(0),
		Output:           ptrString("gammamc.tsv"),
		DBPath:           ptrString(""),
		PNGPath:          ptrString(""),
		HTMLPath:         ptrString(""),
		ProgressInterval: ptrString("10s"),
	}
}

// LoadSweepConfig loads a SweepConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

	cfg := EmptySweepConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SweepConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSweepConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SweepConfig) Validate() error {
	for name, v := range map[string]*float64{
		"radius_min":  c.RadiusMin,
		"radius_max":  c.RadiusMax,
		"radius_step": c.RadiusStep,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%s must be finite, got %v", name, *v)
		}
	}

	if c.RadiusMin != nil && *c.RadiusMin < 0 {
		return fmt.Errorf("radius_min must be non-negative, got %f", *c.RadiusMin)
	}

	if c.RadiusStep != nil && *c.RadiusStep <= 0 {
		return fmt.Errorf("radius_step must be positive, got %f", *c.RadiusStep)
	}

	if c.GetRadiusMax() < c.GetRadiusMin() {
		return fmt.Errorf("radius_max (%f) must not be below radius_min (%f)", c.GetRadiusMax(), c.GetRadiusMin())
	}

	if c.Samples != nil && *c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", *c.Samples)
	}

	if c.MaxDraws != nil && *c.MaxDraws < 0 {
		return fmt.Errorf("max_draws must be non-negative, got %d", *c.MaxDraws)
	}

	if c.ProgressInterval != nil && *c.ProgressInterval != "" {
		if _, err := time.ParseDuration(*c.ProgressInterval); err != nil {
			return fmt.Errorf("invalid progress_interval '%s': %w", *c.ProgressInterval, err)
		}
	}

	return nil
}

// GetRadiusMin returns the radius_min value or the default.
func (c *SweepConfig) GetRadiusMin() float64 {
	if c.RadiusMin == nil {
		return 0
	}
	return *c.RadiusMin
}

// GetRadiusMax returns the radius_max value or the default.
func (c *SweepConfig) GetRadiusMax() float64 {
	if c.RadiusMax == nil {
		return 100
	}
	return *c.RadiusMax
}

// GetRadiusStep returns the radius_step value or the default.
func (c *SweepConfig) GetRadiusStep() float64 {
	if c.RadiusStep == nil {
		return 0.01
	}
	return *c.RadiusStep
}

// GetSamples returns the samples value or the default.
func (c *SweepConfig) GetSamples() int {
	if c.Samples == nil {
		return 1000
	}
	return *c.Samples
}

// GetSeed returns the configured seed and whether one was set.
func (c *SweepConfig) GetSeed() (uint64, bool) {
	if c.Seed == nil {
		return 0, false
	}
	return *c.Seed, true
}

// GetMaxDraws returns the max_draws value or the default (unbounded).
func (c *SweepConfig) GetMaxDraws() int {
	if c.MaxDraws == nil {
		return 0
	}
	return *c.MaxDraws
}

// GetOutput returns the result table path or the default.
func (c *SweepConfig) GetOutput() string {
	if c.Output == nil || *c.Output == "" {
		return "gammamc.tsv"
	}
	return *c.Output
}

// GetDBPath returns the run history database path; empty disables it.
func (c *SweepConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetPNGPath returns the chart image path; empty disables it.
func (c *SweepConfig) GetPNGPath() string {
	if c.PNGPath == nil {
		return ""
	}
	return *c.PNGPath
}

// GetHTMLPath returns the interactive chart path; empty disables it.
func (c *SweepConfig) GetHTMLPath() string {
	if c.HTMLPath == nil {
		return ""
	}
	return *c.HTMLPath
}

// GetProgressInterval parses and returns the ProgressInterval as a time.Duration.
func (c *SweepConfig) GetProgressInterval() time.Duration {
	if c.ProgressInterval == nil || *c.ProgressInterval == "" {
		return 10 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ProgressInterval)
	if err != nil {
		return 10 * time.Second // default on parse error
	}
	return d
}
