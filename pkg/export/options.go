// Package export turns a directory of annotation files into a COCO or YOLO
// dataset packed in a single zip archive.
package export

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/labels"
	"github.com/menta2k/image-annotator/pkg/types"
)

// Format is a dataset layout
type Format int

const (
	FormatCOCO Format = iota
	FormatYOLO
	FormatVOC
)

func (f Format) String() string {
	switch f {
	case FormatCOCO:
		return "coco"
	case FormatYOLO:
		return "yolo"
	case FormatVOC:
		return "voc"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a format name to a Format. The YOLO version names all
// share one layout.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coco":
		return FormatCOCO, nil
	case "yolo", "yolov5", "yolov7", "yolov8", "yolov9":
		return FormatYOLO, nil
	case "voc", "pascal", "pascal_voc":
		return FormatVOC, nil
	default:
		return 0, &OptionsError{Field: "format", Reason: fmt.Sprintf("unknown format %q", s)}
	}
}

// Split names used in the archive
const (
	SplitTrain = "train"
	SplitValid = "valid"
	SplitTest  = "test"
)

// Splits lists the split names in archive order
var Splits = []string{SplitTrain, SplitValid, SplitTest}

// Options describes one export run
type Options struct {
	// AnnotationDir holds the per-image annotation JSON files.
	AnnotationDir string
	// ImageDir holds the source images. Empty means the paths recorded in
	// the annotation files, resolved against AnnotationDir when relative.
	ImageDir string
	Labels   *labels.List
	Format   Format
	// Kind selects YOLO box lines or polygon segmentation lines.
	Kind annotation.Kind

	// Train and Valid are percentages; the remainder goes to test.
	Train int
	Valid int

	SaveMask     bool
	SaveInstance bool
	// IncludeImage adds an overlay of the label mask on the source image.
	IncludeImage bool
	Overlay      types.ImageOutput

	// Seed fixes the COCO shuffle. Zero seeds from the clock.
	Seed int64

	// Output is the archive path.
	Output string
}

// DefaultOptions returns the stock split and output settings
func DefaultOptions() Options {
	return Options{
		Format:  FormatCOCO,
		Kind:    annotation.KindBox,
		Train:   70,
		Valid:   20,
		Overlay: types.ImageOutput{Format: "jpg", Quality: 90},
	}
}

// ErrNoLabels is returned when the export has no label list to index
var ErrNoLabels = errors.New("export: label list is empty")

// OptionsError reports an invalid export option
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("export: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the options before any file is touched
func (o *Options) Validate() error {
	if o.Labels == nil || o.Labels.Len() == 0 {
		return ErrNoLabels
	}
	if o.AnnotationDir == "" {
		return &OptionsError{Field: "annotation dir", Reason: "must be set"}
	}
	if o.Output == "" {
		return &OptionsError{Field: "output", Reason: "must be set"}
	}
	switch o.Format {
	case FormatCOCO, FormatYOLO:
	case FormatVOC:
		return &OptionsError{Field: "format", Reason: "pascal voc export is not supported"}
	default:
		return &OptionsError{Field: "format", Reason: o.Format.String()}
	}
	if o.Kind != annotation.KindBox && o.Kind != annotation.KindPolygon {
		return &OptionsError{Field: "kind", Reason: o.Kind.String()}
	}
	if o.Train < 0 || o.Valid < 0 || o.Train+o.Valid > 100 {
		return &OptionsError{
			Field:  "split",
			Reason: fmt.Sprintf("train %d%% + valid %d%% must be non-negative and at most 100%%", o.Train, o.Valid),
		}
	}
	if o.IncludeImage && o.Overlay.Format == "" {
		o.Overlay.Format = "jpg"
	}
	if o.Overlay.Quality <= 0 {
		o.Overlay.Quality = 90
	}
	return nil
}

// FileError records a source file that could not be exported. The export
// continues with the next file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("export %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// DestinationError reports that the archive could not be created or written.
// It aborts the export.
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("export destination %s: %v", e.Path, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// Progress is reported after every source file
type Progress struct {
	Done  int
	Total int
	File  string
	// Err is set when this file was skipped.
	Err error
}

// Result summarises an export run
type Result struct {
	// Archive is the final archive path; empty when cancelled.
	Archive   string
	Total     int
	Exported  int
	Failures  []*FileError
	Cancelled bool
	// Splits counts the files assigned to each split.
	Splits map[string]int
}
