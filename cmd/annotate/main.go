package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/internal/config"
	"github.com/menta2k/image-annotator/internal/utils"
	"github.com/menta2k/image-annotator/pkg/export"
	"github.com/menta2k/image-annotator/pkg/labels"
)

func main() {
	var annDir, imageDir, labelPath, out, cfgPath string
	var format, kind string
	var train, valid int
	var seed int64
	var mask, instance, overlay bool
	var verbose bool

	flag.StringVar(&annDir, "ann", "", "directory holding the annotation JSON files")
	flag.StringVar(&imageDir, "images", "", "directory holding the source images (default: paths recorded in the annotations)")
	flag.StringVar(&labelPath, "labels", "", "label list file (default: <ann>/labels.yaml)")
	flag.StringVar(&out, "out", "", "output archive path (default: <output_dir>/<format>.zip)")
	flag.StringVar(&cfgPath, "config", "", "config file (default: "+config.GetConfigPath()+" when present)")

	flag.StringVar(&format, "format", "", "dataset format: coco|yolo")
	flag.StringVar(&kind, "kind", "", "annotation kind: bbox|polygon")
	flag.IntVar(&train, "train", -1, "train split percentage")
	flag.IntVar(&valid, "valid", -1, "valid split percentage")
	flag.Int64Var(&seed, "seed", 0, "COCO shuffle seed (0 = random)")

	flag.BoolVar(&mask, "mask", false, "write label masks")
	flag.BoolVar(&instance, "instance", false, "write instance masks")
	flag.BoolVar(&overlay, "overlay", false, "write mask overlays on the source images")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if annDir == "" {
		log.Fatalf("usage: %s -ann annotations_dir [-images dir] [-labels labels.yaml] [-format coco|yolo] [-kind bbox|polygon] [-out dataset.zip]", filepath.Base(os.Args[0]))
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if format != "" {
		cfg.Export.Format = format
	}
	if kind != "" {
		cfg.Export.Kind = kind
	}
	if train >= 0 {
		cfg.Export.TrainPercent = train
	}
	if valid >= 0 {
		cfg.Export.ValidPercent = valid
	}
	if seed != 0 {
		cfg.Export.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	opts, err := cfg.ExportOptions()
	if err != nil {
		log.Fatal(err)
	}
	opts.AnnotationDir = annDir
	opts.ImageDir = imageDir
	opts.SaveMask = opts.SaveMask || mask
	opts.SaveInstance = opts.SaveInstance || instance
	opts.IncludeImage = opts.IncludeImage || overlay

	dirCfg, err := config.LoadDir(annDir)
	if err != nil {
		log.Fatal(err)
	}
	dirCfg.Apply(&opts)

	if labelPath == "" {
		labelPath = filepath.Join(annDir, "labels.yaml")
	}
	opts.Labels, err = labels.Load(labelPath)
	if err != nil {
		log.Fatal(err)
	}

	opts.Output = out
	if opts.Output == "" {
		opts.Output = filepath.Join(cfg.Output.OutputDir, opts.Format.String()+".zip")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"dir":    annDir,
		"format": opts.Format,
		"kind":   opts.Kind,
		"labels": opts.Labels.Len(),
	}).Info("starting export")

	job := export.New(export.WithLogger(log)).Start(ctx, opts)
	for p := range job.Progress() {
		entry := log.WithFields(logrus.Fields{"done": p.Done, "total": p.Total, "file": filepath.Base(p.File)})
		if p.Err != nil {
			entry.WithError(p.Err).Warn("skipped")
			continue
		}
		entry.Debug("exported")
	}

	res, err := job.Wait()
	if err != nil {
		log.Fatal(err)
	}
	if res.Cancelled {
		log.Warn("export cancelled, no archive written")
		os.Exit(130)
	}

	size := "unknown size"
	if fi, err := os.Stat(res.Archive); err == nil {
		size = utils.FormatFileSize(fi.Size())
	}
	log.WithFields(logrus.Fields{
		"archive":  res.Archive,
		"size":     size,
		"exported": res.Exported,
		"failed":   len(res.Failures),
		"train":    res.Splits[export.SplitTrain],
		"valid":    res.Splits[export.SplitValid],
		"test":     res.Splits[export.SplitTest],
	}).Info("export finished")
}

// loadConfig reads an explicit config file, or the user config when one
// exists, or falls back to defaults
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	if def := config.GetConfigPath(); utils.FileExists(def) {
		return config.LoadFromFile(def)
	}
	return config.Default(), nil
}
