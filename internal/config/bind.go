package config

import (
	"fmt"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/editor"
	"github.com/menta2k/image-annotator/pkg/export"
	"github.com/menta2k/image-annotator/pkg/types"
	"github.com/menta2k/image-annotator/pkg/viewport"
)

// EngineConfig converts the editor section into engine thresholds
func (c EditorConfig) EngineConfig() editor.Config {
	return editor.Config{
		BoxCommitDistance: c.BoxCommitDistance,
		BoxVertexRadius:   c.BoxVertexRadius,
		PolygonSnapRadius: c.PolygonSnapRadius,
	}
}

// Options converts the viewport section into viewport options
func (c ViewportConfig) Options() viewport.Options {
	return viewport.Options{
		ZoomIn:   c.ZoomInFactor,
		ZoomOut:  c.ZoomOutFactor,
		MinRatio: c.MinScaleRatio,
		MaxRatio: c.MaxScaleRatio,
	}
}

// ParseKind maps "bbox"/"box" and "polygon"/"segmentation" to a shape kind
func ParseKind(s string) (annotation.Kind, error) {
	switch s {
	case "bbox", "box":
		return annotation.KindBox, nil
	case "polygon", "segmentation":
		return annotation.KindPolygon, nil
	default:
		return 0, fmt.Errorf("unknown annotation kind %q", s)
	}
}

// ExportOptions builds export options from the export and output sections.
// Directories, labels and the output path are left for the caller.
func (c *Config) ExportOptions() (export.Options, error) {
	opts := export.DefaultOptions()

	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return opts, err
	}
	kind, err := ParseKind(c.Export.Kind)
	if err != nil {
		return opts, err
	}

	opts.Format = format
	opts.Kind = kind
	opts.Train = c.Export.TrainPercent
	opts.Valid = c.Export.ValidPercent
	opts.Seed = c.Export.Seed
	opts.SaveMask = c.Export.SaveMask
	opts.SaveInstance = c.Export.SaveInstance
	opts.IncludeImage = c.Export.IncludeImage
	opts.Overlay = types.ImageOutput{
		Format:   c.Output.OverlayFormat,
		Quality:  c.Output.Quality,
		Lossless: c.Output.Lossless,
	}
	return opts, nil
}

// Kind maps the directory annotation type to a shape kind. Only rectangle
// and polygon directories can be edited.
func (t AnnotationType) Kind() (annotation.Kind, bool) {
	switch t {
	case AnnotationRectangle:
		return annotation.KindBox, true
	case AnnotationPolygon:
		return annotation.KindPolygon, true
	default:
		return 0, false
	}
}

// Apply copies the directory settings onto export options
func (c *DirConfig) Apply(opts *export.Options) {
	if kind, ok := c.AnnotationType.Kind(); ok {
		opts.Kind = kind
	}
	opts.SaveMask = opts.SaveMask || c.SaveMask
	opts.IncludeImage = opts.IncludeImage || c.IncludeImage
}
