package export

import (
	"encoding/json"
	"path"

	"github.com/pkg/errors"

	"github.com/menta2k/image-annotator/pkg/codec"
	"github.com/menta2k/image-annotator/pkg/labels"
)

// COCOFileName is the per-split annotation file
const COCOFileName = "_annotations.coco.json"

type cocoDataset struct {
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	codec.Record
	ImageID int `json:"image_id"`
}

type cocoCategory struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// cocoWriter builds one COCO dataset per split. Image and annotation ids are
// unique across the whole export.
type cocoWriter struct {
	categories []cocoCategory
	datasets   map[string]*cocoDataset
	nextImage  int
	nextAnn    int
}

func newCOCOWriter(names *labels.List) *cocoWriter {
	w := &cocoWriter{datasets: make(map[string]*cocoDataset)}
	for i, n := range names.Names() {
		w.categories = append(w.categories, cocoCategory{ID: i, Name: n, Supercategory: "none"})
	}
	return w
}

func (w *cocoWriter) maskDir(split string) string {
	return path.Join("mask", split)
}

func (w *cocoWriter) add(split string, src *source) (*pending, error) {
	imageID := w.nextImage
	img := cocoImage{
		ID:       imageID,
		FileName: src.imageName,
		Width:    src.set.ImageWidth,
		Height:   src.set.ImageHeight,
	}

	objs := src.set.Objects.Objects()
	anns := make([]cocoAnnotation, 0, len(objs))
	for i, obj := range objs {
		rec := codec.EncodeObject(obj)
		rec.ID = w.nextAnn + i
		anns = append(anns, cocoAnnotation{Record: rec, ImageID: imageID})
	}

	return &pending{
		entries: []entry{{name: path.Join(split, src.imageName), data: src.imageData}},
		commit: func() {
			ds := w.dataset(split)
			ds.Images = append(ds.Images, img)
			ds.Annotations = append(ds.Annotations, anns...)
			w.nextImage++
			w.nextAnn += len(anns)
		},
	}, nil
}

func (w *cocoWriter) dataset(split string) *cocoDataset {
	ds, ok := w.datasets[split]
	if !ok {
		ds = &cocoDataset{
			Images:      []cocoImage{},
			Annotations: []cocoAnnotation{},
			Categories:  w.categories,
		}
		w.datasets[split] = ds
	}
	return ds
}

func (w *cocoWriter) finish() ([]entry, error) {
	var out []entry
	for _, split := range Splits {
		ds, ok := w.datasets[split]
		if !ok {
			continue
		}
		data, err := json.MarshalIndent(ds, "", "  ")
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s annotations", split)
		}
		out = append(out, entry{name: path.Join(split, COCOFileName), data: data})
	}
	return out, nil
}
