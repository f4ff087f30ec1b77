package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig   `json:"editor"`
	Viewport ViewportConfig `json:"viewport"`
	Export   ExportConfig   `json:"export"`
	Output   OutputConfig   `json:"output"`
}

// EditorConfig holds hit-test thresholds in image pixels
type EditorConfig struct {
	BoxCommitDistance float64 `json:"box_commit_distance"`
	BoxVertexRadius   float64 `json:"box_vertex_radius"`
	PolygonSnapRadius float64 `json:"polygon_snap_radius"`
}

// ViewportConfig holds zoom behaviour
type ViewportConfig struct {
	ZoomInFactor  float64 `json:"zoom_in_factor"`
	ZoomOutFactor float64 `json:"zoom_out_factor"`
	MinScaleRatio float64 `json:"min_scale_ratio"`
	MaxScaleRatio float64 `json:"max_scale_ratio"`
}

// ExportConfig holds dataset export defaults
type ExportConfig struct {
	Format       string `json:"format"`
	Kind         string `json:"kind"`
	TrainPercent int    `json:"train_percent"`
	ValidPercent int    `json:"valid_percent"`
	Seed         int64  `json:"seed"`
	SaveMask     bool   `json:"save_mask"`
	SaveInstance bool   `json:"save_instance"`
	IncludeImage bool   `json:"include_image"`
}

// OutputConfig holds configuration for rendered overlay images
type OutputConfig struct {
	OverlayFormat string `json:"overlay_format"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	OutputDir     string `json:"output_dir"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			BoxCommitDistance: 20,
			BoxVertexRadius:   20,
			PolygonSnapRadius: 10,
		},
		Viewport: ViewportConfig{
			ZoomInFactor:  1.25,
			ZoomOutFactor: 0.8,
			MinScaleRatio: 0.25,
			MaxScaleRatio: 4,
		},
		Export: ExportConfig{
			Format:       "coco",
			Kind:         "bbox",
			TrainPercent: 70,
			ValidPercent: 20,
		},
		Output: OutputConfig{
			OverlayFormat: "jpg",
			Quality:       90,
			OutputDir:     "./output",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys absent from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Editor.BoxCommitDistance < 0 || c.Editor.BoxVertexRadius <= 0 || c.Editor.PolygonSnapRadius <= 0 {
		return fmt.Errorf("editor thresholds must be positive")
	}

	if c.Viewport.ZoomInFactor <= 1 {
		return fmt.Errorf("viewport.zoom_in_factor must be greater than 1")
	}

	if c.Viewport.ZoomOutFactor <= 0 || c.Viewport.ZoomOutFactor >= 1 {
		return fmt.Errorf("viewport.zoom_out_factor must be between 0 and 1")
	}

	if c.Viewport.MinScaleRatio <= 0 || c.Viewport.MinScaleRatio > 1 || c.Viewport.MaxScaleRatio < 1 {
		return fmt.Errorf("viewport scale ratios must bracket 1")
	}

	if c.Export.TrainPercent < 0 || c.Export.ValidPercent < 0 || c.Export.TrainPercent+c.Export.ValidPercent > 100 {
		return fmt.Errorf("export.train_percent + export.valid_percent must be between 0 and 100")
	}

	if _, err := ParseKind(c.Export.Kind); err != nil {
		return fmt.Errorf("export.kind: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-annotator", "config.json")
}
