// Package imageannotator provides an interactive image annotation core.
//
// A Session ties together the pieces a UI shell needs: it maps pointer
// events from view coordinates to image pixels, drives the box and polygon
// edit state machine, persists annotations as JSON next to the images and
// exports the annotated directory as a COCO or YOLO dataset.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		imageannotator "github.com/menta2k/image-annotator"
//		"github.com/menta2k/image-annotator/pkg/labels"
//		"github.com/menta2k/image-annotator/pkg/viewport"
//	)
//
//	func main() {
//		s := imageannotator.New(labels.New("cat", "dog"), imageannotator.WithSaveDir("annotations"))
//		if err := s.Open("photo.jpg", viewport.Size{W: 1280, H: 720}); err != nil {
//			log.Fatal(err)
//		}
//
//		// drag out a box in view coordinates
//		s.Press(300, 200)
//		s.Move(500, 400)
//		s.Release(500, 400)
//
//		if _, err := s.Save(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
//  1. Viewport (pkg/viewport): view/image coordinate mapping and zoom
//  2. Editor (pkg/editor): the edit state machine
//  3. Annotation (pkg/annotation): objects, shapes and the id-ordered store
//  4. Codec (pkg/codec): the JSON annotation file format
//  5. Export (pkg/export): COCO/YOLO dataset archives with masks
package imageannotator

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/internal/config"
	"github.com/menta2k/image-annotator/internal/utils"
	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/codec"
	"github.com/menta2k/image-annotator/pkg/editor"
	"github.com/menta2k/image-annotator/pkg/export"
	"github.com/menta2k/image-annotator/pkg/geometry"
	"github.com/menta2k/image-annotator/pkg/labels"
	"github.com/menta2k/image-annotator/pkg/processing"
	"github.com/menta2k/image-annotator/pkg/viewport"
)

// Version of the image annotator library
const Version = "1.0.0"

// Session is the editing session for one image at a time
type Session struct {
	cfg      *config.Config
	log      *logrus.Logger
	proc     *processing.Processor
	labels   *labels.List
	selector editor.LabelSelector
	saveDir  string

	set    *annotation.Set
	engine *editor.Engine
	view   *viewport.Viewport
}

// Option configures a Session
type Option func(*Session)

// WithConfig replaces the default configuration
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithLogger sets the logger shared by all components
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithSelector sets the label selector asked when a shape is completed
func WithSelector(sel editor.LabelSelector) Option {
	return func(s *Session) { s.selector = sel }
}

// WithSaveDir sets the directory holding the annotation files
func WithSaveDir(dir string) Option {
	return func(s *Session) { s.saveDir = dir }
}

// New creates a session using the given label list
func New(l *labels.List, opts ...Option) *Session {
	s := &Session{
		cfg:    config.Default(),
		log:    logrus.StandardLogger(),
		proc:   processing.NewProcessor(),
		labels: l,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.set = annotation.NewSet("", 0, 0)
	engineOpts := []editor.Option{
		editor.WithConfig(s.cfg.Editor.EngineConfig()),
		editor.WithLogger(s.log),
		editor.WithLabels(s.labels),
	}
	if s.selector != nil {
		engineOpts = append(engineOpts, editor.WithSelector(s.selector))
	}
	s.engine = editor.New(s.set.Objects, engineOpts...)
	s.view = viewport.NewWithOptions(viewport.Size{}, viewport.Size{}, s.cfg.Viewport.Options())
	return s
}

// ListImages returns the images in dir that can be opened, sorted by name
func (s *Session) ListImages(dir string) ([]string, error) {
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("image directory not found: %s", dir)
	}
	return utils.ListImageFiles(dir)
}

// Open loads an image for editing. An existing annotation file in the save
// directory is loaded; otherwise the session starts empty. The editing kind
// follows the save directory's config when it names one.
func (s *Session) Open(imagePath string, view viewport.Size) error {
	if !utils.IsImageFile(imagePath) {
		return fmt.Errorf("not an image file: %s", imagePath)
	}
	w, h, err := s.proc.ImageSize(imagePath)
	if err != nil {
		return err
	}

	set := annotation.NewSet(imagePath, w, h)
	if s.saveDir != "" {
		annPath := codec.PathFor(s.saveDir, imagePath)
		if utils.FileExists(annPath) {
			loaded, err := codec.ReadFile(annPath)
			if err != nil {
				return err
			}
			set.Objects = loaded.Objects
			set.ImageData = loaded.ImageData
		}

		dirCfg, err := config.LoadDir(s.saveDir)
		if err != nil {
			return err
		}
		if kind, ok := dirCfg.AnnotationType.Kind(); ok {
			s.engine.SetKind(kind)
		}
	}

	s.set = set
	s.engine.SetStore(set.Objects)
	s.view = viewport.NewWithOptions(view, viewport.Size{W: w, H: h}, s.cfg.Viewport.Options())
	s.log.WithFields(logrus.Fields{"image": imagePath, "width": w, "height": h, "objects": set.Objects.Len()}).Info("image opened")
	return nil
}

// LoadImage decodes the open image for display
func (s *Session) LoadImage() (image.Image, error) {
	if s.set.ImagePath == "" {
		return nil, fmt.Errorf("no image open")
	}
	return s.proc.LoadImage(s.set.ImagePath)
}

// Save writes the current annotations to the save directory and returns the
// file path
func (s *Session) Save() (string, error) {
	if s.saveDir == "" {
		return "", fmt.Errorf("no save directory configured")
	}
	if s.set.ImagePath == "" {
		return "", fmt.Errorf("no image open")
	}
	if err := utils.EnsureDir(s.saveDir); err != nil {
		return "", err
	}
	path := codec.PathFor(s.saveDir, s.set.ImagePath)
	if err := codec.WriteFile(path, s.set, s.labels.Len()); err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"file": path, "objects": s.set.Objects.Len()}).Info("annotations saved")
	return path, nil
}

// ToJSON encodes the current annotations
func (s *Session) ToJSON() ([]byte, error) {
	return codec.Marshal(s.set, s.labels.Len())
}

// FromJSON replaces the current annotations with decoded data
func (s *Session) FromJSON(data []byte) error {
	set, err := codec.Unmarshal(data)
	if err != nil {
		return err
	}
	s.set = set
	s.engine.SetStore(set.Objects)
	s.view.SetImage(viewport.Size{W: set.ImageWidth, H: set.ImageHeight})
	return nil
}

// Press forwards a pointer press in view coordinates
func (s *Session) Press(x, y int) {
	s.engine.Press(s.view.ToImage(geometry.Pt(x, y)))
}

// Move forwards pointer motion in view coordinates
func (s *Session) Move(x, y int) {
	s.engine.Move(s.view.ToImage(geometry.Pt(x, y)))
}

// Release forwards a pointer release in view coordinates
func (s *Session) Release(x, y int) {
	s.engine.Release(s.view.ToImage(geometry.Pt(x, y)))
}

// SetMode changes the edit mode
func (s *Session) SetMode(m editor.Mode) {
	s.engine.SetMode(m)
}

// SetKind switches between box and polygon editing
func (s *Session) SetKind(k annotation.Kind) {
	s.engine.SetKind(k)
}

// Select selects an object by id; -1 deselects
func (s *Session) Select(id int) {
	s.engine.Select(id)
}

// SetCategory relabels an object
func (s *Session) SetCategory(id, categoryID int) bool {
	return s.engine.SetCategory(id, categoryID)
}

// ZoomIn enlarges the image by one step
func (s *Session) ZoomIn() bool {
	return s.view.ZoomIn()
}

// ZoomOut shrinks the image by one step
func (s *Session) ZoomOut() bool {
	return s.view.ZoomOut()
}

// Fit resets the zoom to fit the view
func (s *Session) Fit() {
	s.view.Fit()
}

// Resize updates the view size
func (s *Session) Resize(view viewport.Size) {
	s.view.Resize(view)
}

// Export writes a dataset archive of the save directory. Zero options start
// from the session configuration. The annotation directory's config.yaml is
// applied on top, and empty directory, label and output fields are filled
// from the session.
func (s *Session) Export(ctx context.Context, opts export.Options, progress func(export.Progress)) (export.Result, error) {
	if opts == (export.Options{}) {
		var err error
		if opts, err = s.cfg.ExportOptions(); err != nil {
			return export.Result{}, err
		}
	}
	if opts.AnnotationDir == "" {
		opts.AnnotationDir = s.saveDir
	}
	if opts.Labels == nil {
		opts.Labels = s.labels
	}
	if opts.Output == "" {
		opts.Output = filepath.Join(s.cfg.Output.OutputDir, opts.Format.String()+".zip")
	}
	if opts.AnnotationDir != "" {
		dirCfg, err := config.LoadDir(opts.AnnotationDir)
		if err != nil {
			return export.Result{}, err
		}
		dirCfg.Apply(&opts)
	}
	return export.New(export.WithLogger(s.log)).Export(ctx, opts, progress)
}

// Engine returns the edit engine
func (s *Session) Engine() *editor.Engine {
	return s.engine
}

// Viewport returns the coordinate mapper
func (s *Session) Viewport() *viewport.Viewport {
	return s.view
}

// Annotations returns the current annotation set
func (s *Session) Annotations() *annotation.Set {
	return s.set
}

// Labels returns the label list
func (s *Session) Labels() *labels.List {
	return s.labels
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
