package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirConfigFileName is the per-directory settings file in a save directory
const DirConfigFileName = "config.yaml"

// AnnotationType is the annotation tool recorded for a save directory.
// Values are persisted as ordinals.
type AnnotationType int

const (
	AnnotationNone AnnotationType = iota
	AnnotationPoint
	AnnotationLine
	AnnotationCircle
	AnnotationRectangle
	AnnotationPolygon
)

func (t AnnotationType) String() string {
	switch t {
	case AnnotationNone:
		return "none"
	case AnnotationPoint:
		return "point"
	case AnnotationLine:
		return "line"
	case AnnotationCircle:
		return "circle"
	case AnnotationRectangle:
		return "rectangle"
	case AnnotationPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("annotation_type(%d)", int(t))
	}
}

// DirConfig is the per-directory configuration
type DirConfig struct {
	AnnotationType AnnotationType `yaml:"annotation_type"`
	SaveMask       bool           `yaml:"save_mask"`
	IncludeImage   bool           `yaml:"include_img"`
}

// LoadDir reads the directory configuration in dir. A missing file yields
// the zero configuration.
func LoadDir(dir string) (*DirConfig, error) {
	var cfg DirConfig
	data, err := os.ReadFile(filepath.Join(dir, DirConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read directory config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse directory config: %w", err)
	}
	if cfg.AnnotationType < AnnotationNone || cfg.AnnotationType > AnnotationPolygon {
		return nil, fmt.Errorf("directory config: unknown annotation_type %d", int(cfg.AnnotationType))
	}
	return &cfg, nil
}

// Save writes the configuration into dir
func (c *DirConfig) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal directory config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DirConfigFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write directory config: %w", err)
	}
	return nil
}
