package export

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
	"github.com/menta2k/image-annotator/pkg/labels"
	"github.com/menta2k/image-annotator/pkg/types"
)

// YOLODataFile is the dataset descriptor at the archive root
const YOLODataFile = "data.yaml"

type yoloData struct {
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// yoloWriter emits one label text file per image. With KindBox each object
// is a normalised centre/size line; with KindPolygon each ring is a
// normalised point list.
type yoloWriter struct {
	names *labels.List
	kind  annotation.Kind
}

func newYOLOWriter(names *labels.List, kind annotation.Kind) *yoloWriter {
	return &yoloWriter{names: names, kind: kind}
}

func (w *yoloWriter) maskDir(split string) string {
	return path.Join(split, "masks")
}

func (w *yoloWriter) add(split string, src *source) (*pending, error) {
	set := src.set
	if set.ImageWidth <= 0 || set.ImageHeight <= 0 {
		return nil, errors.Errorf("invalid image size %dx%d", set.ImageWidth, set.ImageHeight)
	}

	var b strings.Builder
	for _, obj := range set.Objects.Objects() {
		for _, line := range w.lines(obj, set.ImageWidth, set.ImageHeight) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return &pending{
		entries: []entry{
			{name: path.Join(split, "images", src.imageName), data: src.imageData},
			{name: path.Join(split, "labels", src.stem+".txt"), data: []byte(b.String())},
		},
	}, nil
}

func (w *yoloWriter) lines(obj *annotation.Object, imgW, imgH int) []string {
	if w.kind == annotation.KindBox {
		box := types.NormalizeBox(obj.BBox(), imgW, imgH)
		cx, cy := box.Center()
		return []string{fmt.Sprintf("%d %.6f %.6f %.6f %.6f", obj.CategoryID, cx, cy, box.W, box.H)}
	}

	rings := obj.Rings()
	if rings == nil {
		rings = objectRings(obj)
	}
	out := make([]string, 0, len(rings))
	for _, ring := range rings {
		out = append(out, segmentLine(obj.CategoryID, ring, imgW, imgH))
	}
	return out
}

func segmentLine(categoryID int, ring geometry.Ring, imgW, imgH int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", categoryID)
	for _, p := range ring {
		x, y := types.NormalizePoint(p, imgW, imgH)
		fmt.Fprintf(&b, " %.6f %.6f", x, y)
	}
	return b.String()
}

func (w *yoloWriter) finish() ([]entry, error) {
	data, err := yaml.Marshal(yoloData{
		Train: "../train/images",
		Val:   "../valid/images",
		Test:  "../test/images",
		NC:    w.names.Len(),
		Names: w.names.Names(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal data.yaml")
	}
	return []entry{{name: YOLODataFile, data: data}}, nil
}
