// Package config owns the tuning configuration for the trip analysis and
// evaluation engines: a JSON-serializable struct with optional pointer
// fields so that a partial config file only overrides what it sets.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/dms.defaults.json"

// Config represents the root configuration for the trip analysis and
// evaluation engines. Fields are pointers so that a partial JSON file
// only overrides what it explicitly sets; everything else falls back
// to the Get* defaults below.
type Config struct {
	// Trip analysis params.
	TargetFPS        *float64 `json:"target_fps,omitempty"`
	ClipPreEventSec  *float64 `json:"clip_pre_event_sec,omitempty"`
	ClipPostEventSec *float64 `json:"clip_post_event_sec,omitempty"`
	ReportDir        *string  `json:"report_dir,omitempty"`
	UploadDir        *string  `json:"upload_dir,omitempty"`

	// Evaluation engine defaults; overridable per-run by CLI flags.
	IOUThreshold *float64 `json:"iou_threshold,omitempty"`
	ToleranceMs  *float64 `json:"tolerance_ms,omitempty"`
	Bins         *int     `json:"bins,omitempty"`
}

// EmptyConfig returns a Config with all fields unset.
// Use LoadConfig to load actual values from a defaults file.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file. The file is validated to
// have a .json extension and to be under the max file size. Fields
// omitted from the JSON retain their default values, so partial
// configs are safe.
func LoadConfig(path string) (*Config, error) {
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

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching from the current directory up through
// common parent directories. Panics if the file cannot be loaded;
// intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// LoadWithOverride loads DefaultConfigPath (falling back to an empty,
// all-defaults Config if it cannot be found or parsed) and layers
// overridePath on top of it if non-empty. Shared by the three CLI
// entry points (spec §6) so each one resolves config the same way.
func LoadWithOverride(overridePath string) (*Config, error) {
	base := EmptyConfig()
	if defaults, err := LoadConfig(DefaultConfigPath); err == nil {
		base = defaults
	}
	if overridePath == "" {
		return base, nil
	}
	override, err := LoadConfig(overridePath)
	if err != nil {
		return nil, fmt.Errorf("loading config %q: %w", overridePath, err)
	}
	return base.Merge(override), nil
}

// Validate checks that set configuration values are within range.
func (c *Config) Validate() error {
	if c.TargetFPS != nil && *c.TargetFPS <= 0 {
		return fmt.Errorf("target_fps must be positive, got %f", *c.TargetFPS)
	}
	if c.ClipPreEventSec != nil && *c.ClipPreEventSec < 0 {
		return fmt.Errorf("clip_pre_event_sec must be non-negative, got %f", *c.ClipPreEventSec)
	}
	if c.ClipPostEventSec != nil && *c.ClipPostEventSec < 0 {
		return fmt.Errorf("clip_post_event_sec must be non-negative, got %f", *c.ClipPostEventSec)
	}
	if c.IOUThreshold != nil && (*c.IOUThreshold < 0 || *c.IOUThreshold > 1) {
		return fmt.Errorf("iou_threshold must be between 0 and 1, got %f", *c.IOUThreshold)
	}
	if c.ToleranceMs != nil && *c.ToleranceMs < 0 {
		return fmt.Errorf("tolerance_ms must be non-negative, got %f", *c.ToleranceMs)
	}
	if c.Bins != nil && *c.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", *c.Bins)
	}
	return nil
}

// Merge overlays non-nil fields from other onto a copy of c, returning
// the result. Used to layer CLI flag overrides on top of file-loaded
// config, which itself overlays built-in defaults.
func (c *Config) Merge(other *Config) *Config {
	merged := *c
	if other == nil {
		return &merged
	}
	if other.TargetFPS != nil {
		merged.TargetFPS = other.TargetFPS
	}
	if other.ClipPreEventSec != nil {
		merged.ClipPreEventSec = other.ClipPreEventSec
	}
	if other.ClipPostEventSec != nil {
		merged.ClipPostEventSec = other.ClipPostEventSec
	}
	if other.ReportDir != nil {
		merged.ReportDir = other.ReportDir
	}
	if other.UploadDir != nil {
		merged.UploadDir = other.UploadDir
	}
	if other.IOUThreshold != nil {
		merged.IOUThreshold = other.IOUThreshold
	}
	if other.ToleranceMs != nil {
		merged.ToleranceMs = other.ToleranceMs
	}
	if other.Bins != nil {
		merged.Bins = other.Bins
	}
	return &merged
}

// GetTargetFPS returns the target_fps value or the default.
func (c *Config) GetTargetFPS() float64 {
	if c.TargetFPS == nil {
		return 10.0
	}
	return *c.TargetFPS
}

// GetClipPreEventSec returns the clip_pre_event_sec value or the default.
func (c *Config) GetClipPreEventSec() float64 {
	if c.ClipPreEventSec == nil {
		return 5.0
	}
	return *c.ClipPreEventSec
}

// GetClipPostEventSec returns the clip_post_event_sec value or the default.
func (c *Config) GetClipPostEventSec() float64 {
	if c.ClipPostEventSec == nil {
		return 5.0
	}
	return *c.ClipPostEventSec
}

// GetReportDir returns the report_dir value or the default "reports".
func (c *Config) GetReportDir() string {
	if c.ReportDir == nil || *c.ReportDir == "" {
		return "reports"
	}
	return *c.ReportDir
}

// GetUploadDir returns the upload_dir value or the default "uploads".
func (c *Config) GetUploadDir() string {
	if c.UploadDir == nil || *c.UploadDir == "" {
		return "uploads"
	}
	return *c.UploadDir
}

// GetIOUThreshold returns the iou_threshold value or the default.
func (c *Config) GetIOUThreshold() float64 {
	if c.IOUThreshold == nil {
		return 0.30
	}
	return *c.IOUThreshold
}

// GetToleranceMs returns the tolerance_ms value or the default.
func (c *Config) GetToleranceMs() float64 {
	if c.ToleranceMs == nil {
		return 1200
	}
	return *c.ToleranceMs
}

// GetBins returns the bins value or the default.
func (c *Config) GetBins() int {
	if c.Bins == nil {
		return 10
	}
	return *c.Bins
}

// EvaluationFlags holds the evaluate/evaluate-range CLI flag overrides
// (spec CLI surface: --iou, --tolerance-ms, --bins) registered onto a
// flag.FlagSet, with defaults drawn from base.
type EvaluationFlags struct {
	IOU         *float64
	ToleranceMs *float64
	Bins        *int
}

// RegisterEvaluationFlags registers --iou, --tolerance-ms, and --bins
// on fs, defaulting to base's values. Call after fs.Parse to build a
// Config with Resolve.
func RegisterEvaluationFlags(fs *flag.FlagSet, base *Config) *EvaluationFlags {
	return &EvaluationFlags{
		IOU:         fs.Float64("iou", base.GetIOUThreshold(), "IoU threshold for match admissibility"),
		ToleranceMs: fs.Float64("tolerance-ms", base.GetToleranceMs(), "center-distance tolerance in milliseconds"),
		Bins:        fs.Int("bins", base.GetBins(), "number of equal-width calibration buckets"),
	}
}

// Resolve turns parsed flag values back into a Config fragment
// suitable for Config.Merge.
func (f *EvaluationFlags) Resolve() *Config {
	return &Config{
		IOUThreshold: f.IOU,
		ToleranceMs:  f.ToleranceMs,
		Bins:         f.Bins,
	}
}
