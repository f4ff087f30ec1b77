// Package viewport maps pointer positions between the view (widget) space
// and the image pixel space of a scaled, centred image.
package viewport

import (
	"math"

	"github.com/menta2k/image-annotator/pkg/geometry"
)

// Size is a width/height pair in pixels
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Empty reports whether either dimension is non-positive
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Default zoom behaviour
const (
	ZoomInFactor  = 1.25
	ZoomOutFactor = 0.8
	MinScaleRatio = 0.25
	MaxScaleRatio = 4.0
)

// ContentSize returns the on-screen size of an image drawn at scale.
// Rounding up keeps every scaled image pixel inside the content area.
func ContentSize(image Size, scale float64) Size {
	return Size{
		W: int(math.Ceil(float64(image.W) * scale)),
		H: int(math.Ceil(float64(image.H) * scale)),
	}
}

// Offset returns the top-left corner of content centred in view
func Offset(view, content Size) geometry.Point {
	return geometry.Point{X: (view.W - content.W) / 2, Y: (view.H - content.H) / 2}
}

// ToImage converts a view-space point to image space. The second result is
// false when the point falls outside the drawn image.
func ToImage(p geometry.Point, view, content Size, scale float64) (geometry.Point, bool) {
	if scale <= 0 {
		return geometry.Point{}, false
	}
	off := Offset(view, content)
	rx, ry := p.X-off.X, p.Y-off.Y
	if rx < 0 || ry < 0 || rx >= content.W || ry >= content.H {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: int(math.Floor(float64(rx) / scale)),
		Y: int(math.Floor(float64(ry) / scale)),
	}, true
}

// ToView converts an image-space point to view space
func ToView(p geometry.Point, view, content Size, scale float64) geometry.Point {
	off := Offset(view, content)
	return geometry.Point{
		X: off.X + int(math.Floor(float64(p.X)*scale)),
		Y: off.Y + int(math.Floor(float64(p.Y)*scale)),
	}
}

// Options tunes zoom steps and limits. Zero fields take the package defaults.
type Options struct {
	ZoomIn   float64
	ZoomOut  float64
	MinRatio float64
	MaxRatio float64
}

func (o Options) withDefaults() Options {
	if o.ZoomIn <= 1 {
		o.ZoomIn = ZoomInFactor
	}
	if o.ZoomOut <= 0 || o.ZoomOut >= 1 {
		o.ZoomOut = ZoomOutFactor
	}
	if o.MinRatio <= 0 {
		o.MinRatio = MinScaleRatio
	}
	if o.MaxRatio <= 0 {
		o.MaxRatio = MaxScaleRatio
	}
	return o
}

// Viewport tracks the view size, the image size and the current scale
type Viewport struct {
	view  Size
	image Size
	scale float64
	opts  Options
}

// New creates a viewport fitted to view
func New(view, image Size) *Viewport {
	return NewWithOptions(view, image, Options{})
}

// NewWithOptions creates a viewport with custom zoom settings
func NewWithOptions(view, image Size, opts Options) *Viewport {
	v := &Viewport{view: view, image: image, opts: opts.withDefaults()}
	v.Fit()
	return v
}

// FitScale returns the largest scale at which the whole image fits the view
func (v *Viewport) FitScale() float64 {
	if v.image.Empty() || v.view.Empty() {
		return 1
	}
	return math.Min(float64(v.view.W)/float64(v.image.W), float64(v.view.H)/float64(v.image.H))
}

// MinScale returns the smallest allowed scale
func (v *Viewport) MinScale() float64 {
	return v.FitScale() * v.opts.MinRatio
}

// MaxScale returns the largest allowed scale
func (v *Viewport) MaxScale() float64 {
	return v.FitScale() * v.opts.MaxRatio
}

// Scale returns the current scale
func (v *Viewport) Scale() float64 {
	return v.scale
}

// View returns the view size
func (v *Viewport) View() Size {
	return v.view
}

// Image returns the image size
func (v *Viewport) Image() Size {
	return v.image
}

// Content returns the size of the drawn image at the current scale
func (v *Viewport) Content() Size {
	return ContentSize(v.image, v.scale)
}

// Fit resets the scale to the aspect-fit scale
func (v *Viewport) Fit() {
	v.scale = v.FitScale()
}

// Resize changes the view size and refits the image
func (v *Viewport) Resize(view Size) {
	v.view = view
	v.Fit()
}

// SetImage replaces the image size and refits
func (v *Viewport) SetImage(image Size) {
	v.image = image
	v.Fit()
}

// SetScale applies s when it lies within [MinScale, MaxScale]; otherwise the
// scale is left unchanged and false is returned.
func (v *Viewport) SetScale(s float64) bool {
	const eps = 1e-9
	if s < v.MinScale()-eps || s > v.MaxScale()+eps {
		return false
	}
	v.scale = s
	return true
}

// ZoomIn multiplies the scale by the zoom-in step
func (v *Viewport) ZoomIn() bool {
	return v.SetScale(v.scale * v.opts.ZoomIn)
}

// ZoomOut multiplies the scale by the zoom-out step
func (v *Viewport) ZoomOut() bool {
	return v.SetScale(v.scale * v.opts.ZoomOut)
}

// ToImage maps a view-space point using the current state
func (v *Viewport) ToImage(p geometry.Point) (geometry.Point, bool) {
	return ToImage(p, v.view, v.Content(), v.scale)
}

// ToView maps an image-space point using the current state
func (v *Viewport) ToView(p geometry.Point) geometry.Point {
	return ToView(p, v.view, v.Content(), v.scale)
}

// Offset returns the top-left of the drawn image in view space
func (v *Viewport) Offset() geometry.Point {
	return Offset(v.view, v.Content())
}
