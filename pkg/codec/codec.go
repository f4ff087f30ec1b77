// Package codec converts annotation sets to and from the persisted JSON
// annotation file format.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
)

// File is the on-disk form of an annotation set
type File struct {
	ImagePath   string   `json:"imagePath"`
	ImageWidth  int      `json:"imageWidth"`
	ImageHeight int      `json:"imageHeight"`
	ImageData   *string  `json:"imageData"`
	Annotations []Record `json:"annotations"`
}

// Record is the on-disk form of one object. Segmentation holds one flat
// x1,y1,x2,y2,... list per ring and is empty for boxes.
type Record struct {
	ID           int     `json:"id"`
	CategoryID   int     `json:"category_id"`
	BBox         []int   `json:"bbox"`
	Area         int     `json:"area"`
	Segmentation [][]int `json:"segmentation"`
	IsCrowd      int     `json:"iscrowd"`
}

// DecodeError reports a structurally invalid annotation file
type DecodeError struct {
	// Path locates the problem, e.g. "annotations[2].bbox".
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("annotation file: %s: %s", e.Path, e.Reason)
}

func missing(path string) error {
	return &DecodeError{Path: path, Reason: "missing required key"}
}

// Encode converts a set to its file form. Every category id must lie within
// a label list of numLabels entries.
func Encode(set *annotation.Set, numLabels int) (*File, error) {
	if err := set.Objects.Validate(numLabels); err != nil {
		return nil, err
	}

	f := &File{
		ImagePath:   set.ImagePath,
		ImageWidth:  set.ImageWidth,
		ImageHeight: set.ImageHeight,
		ImageData:   set.ImageData,
		Annotations: make([]Record, 0, set.Objects.Len()),
	}
	for _, obj := range set.Objects.Objects() {
		f.Annotations = append(f.Annotations, EncodeObject(obj))
	}
	return f, nil
}

// EncodeObject converts one object to a record
func EncodeObject(obj *annotation.Object) Record {
	bb := obj.BBox()
	rec := Record{
		ID:           obj.ID,
		CategoryID:   obj.CategoryID,
		BBox:         []int{bb.X, bb.Y, bb.Width, bb.Height},
		Area:         bb.Area(),
		Segmentation: [][]int{},
	}
	for _, ring := range obj.Rings() {
		flat := make([]int, 0, len(ring)*2)
		for _, p := range ring {
			flat = append(flat, p.X, p.Y)
		}
		rec.Segmentation = append(rec.Segmentation, flat)
	}
	return rec
}

// Decode converts a file back to a set. Objects are renumbered in file order.
func Decode(f *File) (*annotation.Set, error) {
	set := annotation.NewSet(f.ImagePath, f.ImageWidth, f.ImageHeight)
	set.ImageData = f.ImageData

	objs := make([]*annotation.Object, 0, len(f.Annotations))
	for i, rec := range f.Annotations {
		obj, err := DecodeRecord(rec)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Path = fmt.Sprintf("annotations[%d].%s", i, de.Path)
			}
			return nil, err
		}
		objs = append(objs, obj)
	}
	set.Objects.Replace(objs)
	return set, nil
}

// DecodeRecord converts one record to an object. The bbox must hold x, y,
// width and height with a non-negative size.
func DecodeRecord(rec Record) (*annotation.Object, error) {
	if len(rec.BBox) != 4 {
		return nil, &DecodeError{Path: "bbox", Reason: fmt.Sprintf("expected 4 values, got %d", len(rec.BBox))}
	}
	if rec.BBox[2] < 0 || rec.BBox[3] < 0 {
		return nil, &DecodeError{Path: "bbox", Reason: "negative width or height"}
	}

	obj := &annotation.Object{ID: rec.ID, CategoryID: rec.CategoryID}
	if len(rec.Segmentation) == 0 {
		obj.Shape = annotation.NewBox(geometry.Rect{
			X: rec.BBox[0], Y: rec.BBox[1], Width: rec.BBox[2], Height: rec.BBox[3],
		})
		return obj, nil
	}

	poly := &annotation.Polygon{}
	for r, flat := range rec.Segmentation {
		if len(flat)%2 != 0 {
			return nil, &DecodeError{Path: fmt.Sprintf("segmentation[%d]", r), Reason: "odd number of coordinates"}
		}
		if len(flat) < 6 {
			return nil, &DecodeError{Path: fmt.Sprintf("segmentation[%d]", r), Reason: "ring has fewer than 3 points"}
		}
		ring := make(geometry.Ring, 0, len(flat)/2)
		for k := 0; k < len(flat); k += 2 {
			ring = append(ring, geometry.Pt(flat[k], flat[k+1]))
		}
		poly.Rings = append(poly.Rings, ring)
	}
	obj.Shape = poly
	return obj, nil
}

// Marshal encodes a set as indented JSON
func Marshal(set *annotation.Set, numLabels int) ([]byte, error) {
	f, err := Encode(set, numLabels)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return nil, errors.Wrap(err, "failed to marshal annotations")
	}
	return buf.Bytes(), nil
}

var (
	fileKeys   = []string{"imagePath", "imageWidth", "imageHeight", "annotations"}
	recordKeys = []string{"id", "category_id", "bbox", "segmentation"}
)

// Unmarshal parses and decodes JSON annotation data. Missing required keys
// are reported as *DecodeError.
func Unmarshal(data []byte) (*annotation.Set, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Decode(f)
}

// Parse checks required keys and parses JSON annotation data into a File
func Parse(data []byte) (*File, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "failed to parse annotation file")
	}
	for _, k := range fileKeys {
		if _, ok := fields[k]; !ok {
			return nil, missing(k)
		}
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(fields["annotations"], &records); err != nil {
		return nil, &DecodeError{Path: "annotations", Reason: err.Error()}
	}
	for i, rec := range records {
		for _, k := range recordKeys {
			if _, ok := rec[k]; !ok {
				return nil, missing(fmt.Sprintf("annotations[%d].%s", i, k))
			}
		}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &DecodeError{Path: "$", Reason: err.Error()}
	}
	return &f, nil
}

// ReadFile loads an annotation file from disk
func ReadFile(path string) (*annotation.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read annotation file")
	}
	set, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return set, nil
}

// WriteFile saves a set to disk, creating the directory if needed
func WriteFile(path string, set *annotation.Set, numLabels int) error {
	data, err := Marshal(set, numLabels)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create annotation directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write annotation file")
	}
	return nil
}

// PathFor returns the annotation file path for an image stored in dir
func PathFor(dir, imagePath string) string {
	base := filepath.Base(imagePath)
	return filepath.Join(dir, base[:len(base)-len(filepath.Ext(base))]+".json")
}
