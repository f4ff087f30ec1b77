package export

import (
	"bytes"
	"context"
	"image"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/internal/utils"
	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/codec"
	"github.com/menta2k/image-annotator/pkg/processing"
)

// source is one annotation file together with its image bytes
type source struct {
	annPath   string
	stem      string
	set       *annotation.Set
	imageName string
	imageData []byte
	image     image.Image
}

// pending holds the archive entries of one file. commit runs only after the
// entries were written.
type pending struct {
	entries []entry
	commit  func()
}

type datasetWriter interface {
	add(split string, src *source) (*pending, error)
	maskDir(split string) string
	finish() ([]entry, error)
}

// Exporter runs dataset exports
type Exporter struct {
	proc *processing.Processor
	log  *logrus.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(x *Exporter) { x.log = log }
}

// New creates an exporter
func New(opts ...Option) *Exporter {
	x := &Exporter{
		proc: processing.NewProcessor(),
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Export writes the dataset archive. Per-file problems are collected in
// Result.Failures and do not stop the run. Cancelling ctx stops after the
// current file, removes the partial archive and returns a cancelled Result
// with a nil error.
func (x *Exporter) Export(ctx context.Context, opts Options, progress func(Progress)) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	files, err := utils.ListAnnotationFiles(opts.AnnotationDir)
	if err != nil {
		return Result{}, errors.Wrap(err, "list annotation files")
	}

	arc, err := createArchive(opts.Output)
	if err != nil {
		return Result{}, err
	}

	var assigned []assignment
	var writer datasetWriter
	switch opts.Format {
	case FormatYOLO:
		assigned = splitSequential(files, opts.Train, opts.Valid)
		writer = newYOLOWriter(opts.Labels, opts.Kind)
	default:
		assigned = splitShuffled(files, opts.Train, opts.Valid, opts.Seed)
		writer = newCOCOWriter(opts.Labels)
	}

	res := Result{Total: len(files), Splits: countSplits(assigned)}
	log := x.log.WithFields(logrus.Fields{"format": opts.Format, "files": len(files), "output": opts.Output})
	log.Info("export started")

	if ctx.Err() != nil {
		arc.abort()
		res.Cancelled = true
		return res, nil
	}

	for i, a := range assigned {
		ferr := x.exportFile(&opts, writer, arc, a)
		if ferr != nil {
			var dest *DestinationError
			if errors.As(ferr, &dest) {
				arc.abort()
				return res, ferr
			}
			fe := &FileError{File: a.file, Err: ferr}
			res.Failures = append(res.Failures, fe)
			log.WithFields(logrus.Fields{"file": a.file, "error": ferr}).Warn("file skipped")
		} else {
			res.Exported++
		}

		if progress != nil {
			p := Progress{Done: i + 1, Total: len(assigned), File: a.file}
			if ferr != nil {
				p.Err = ferr
			}
			progress(p)
		}

		if ctx.Err() != nil {
			arc.abort()
			res.Cancelled = true
			log.WithField("done", i+1).Info("export cancelled")
			return res, nil
		}
	}

	tail, err := writer.finish()
	if err != nil {
		arc.abort()
		return res, err
	}
	if err := arc.write(tail...); err != nil {
		arc.abort()
		return res, err
	}
	if err := arc.commit(); err != nil {
		return res, err
	}
	res.Archive = opts.Output
	log.WithFields(logrus.Fields{"exported": res.Exported, "failed": len(res.Failures)}).Info("export finished")
	return res, nil
}

func (x *Exporter) exportFile(opts *Options, writer datasetWriter, arc *archive, a assignment) error {
	src, err := x.loadSource(opts, a.file)
	if err != nil {
		return err
	}

	p, err := writer.add(a.split, src)
	if err != nil {
		return err
	}
	masks, err := x.maskEntries(opts, src, writer.maskDir(a.split))
	if err != nil {
		return err
	}

	if err := arc.write(append(p.entries, masks...)...); err != nil {
		return err
	}
	if p.commit != nil {
		p.commit()
	}
	return nil
}

func (x *Exporter) loadSource(opts *Options, annPath string) (*source, error) {
	set, err := codec.ReadFile(annPath)
	if err != nil {
		return nil, err
	}
	if err := set.Objects.Validate(opts.Labels.Len()); err != nil {
		return nil, err
	}

	imgPath := resolveImage(opts, annPath, set.ImagePath)
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	src := &source{
		annPath:   annPath,
		stem:      utils.Stem(annPath),
		set:       set,
		imageName: utils.SanitizeFilename(filepath.Base(imgPath)),
		imageData: data,
	}

	if opts.IncludeImage || set.ImageWidth <= 0 || set.ImageHeight <= 0 {
		img, err := x.proc.DecodeImage(data)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", imgPath)
		}
		src.image = img
		if set.ImageWidth <= 0 || set.ImageHeight <= 0 {
			set.ImageWidth, set.ImageHeight = img.Bounds().Dx(), img.Bounds().Dy()
		}
	}
	return src, nil
}

// resolveImage finds the image for an annotation file. An image directory
// takes precedence; otherwise relative paths are resolved against the
// annotation file's directory.
func resolveImage(opts *Options, annPath, imagePath string) string {
	if opts.ImageDir != "" {
		return filepath.Join(opts.ImageDir, filepath.Base(imagePath))
	}
	if filepath.IsAbs(imagePath) {
		return imagePath
	}
	return filepath.Join(filepath.Dir(annPath), imagePath)
}

func (x *Exporter) maskEntries(opts *Options, src *source, dir string) ([]entry, error) {
	if !opts.SaveMask && !opts.SaveInstance && !opts.IncludeImage {
		return nil, nil
	}
	m := &maskRenderer{proc: x.proc}
	var out []entry

	label := m.labelMask(src.set)
	if opts.SaveMask {
		data, err := x.encode(label, "png", 0, false)
		if err != nil {
			return nil, err
		}
		out = append(out, entry{name: path.Join(dir, src.stem+".png"), data: data})
	}
	if opts.SaveInstance {
		data, err := x.encode(m.instanceMask(src.set), "png", 0, false)
		if err != nil {
			return nil, err
		}
		out = append(out, entry{name: path.Join(dir, src.stem+"_instance.png"), data: data})
	}
	if opts.IncludeImage && src.image != nil {
		ov := m.overlay(src.image, label, src.set, opts.Labels)
		data, err := x.encode(ov, opts.Overlay.Format, opts.Overlay.Quality, opts.Overlay.Lossless)
		if err != nil {
			return nil, err
		}
		ext := utils.GetFileExtension("." + opts.Overlay.Format)
		out = append(out, entry{name: path.Join(dir, src.stem+"_overlay."+ext), data: data})
	}
	return out, nil
}

func (x *Exporter) encode(img image.Image, format string, quality int, lossless bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.proc.Encode(&buf, img, format, quality, lossless); err != nil {
		return nil, errors.Wrap(err, "encode mask")
	}
	return buf.Bytes(), nil
}
