package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-annotator/pkg/geometry"
)

func TestToImageCentredContent(t *testing.T) {
	view := Size{W: 800, H: 600}
	image := Size{W: 400, H: 200}
	scale := 1.0
	content := ContentSize(image, scale)

	// content is centred: offset (200, 200)
	p, ok := ToImage(geometry.Pt(200, 200), view, content, scale)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(0, 0), p)

	p, ok = ToImage(geometry.Pt(599, 399), view, content, scale)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(399, 199), p)

	_, ok = ToImage(geometry.Pt(199, 250), view, content, scale)
	assert.False(t, ok, "left of the image")
	_, ok = ToImage(geometry.Pt(600, 250), view, content, scale)
	assert.False(t, ok, "right of the image")
	_, ok = ToImage(geometry.Pt(300, 400), view, content, scale)
	assert.False(t, ok, "below the image")
}

func TestToImageScaled(t *testing.T) {
	view := Size{W: 1000, H: 1000}
	image := Size{W: 100, H: 100}
	scale := 10.0
	content := ContentSize(image, scale)

	p, ok := ToImage(geometry.Pt(55, 999), view, content, scale)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(5, 99), p)

	_, ok = ToImage(geometry.Pt(10, 10), view, content, 0)
	assert.False(t, ok)
}

func TestRoundTripWithinOneUnit(t *testing.T) {
	view := Size{W: 1024, H: 768}
	image := Size{W: 640, H: 480}

	for _, scale := range []float64{1, 1.1, 1.25, 1.5, 1.6, 2, 3.7} {
		content := ContentSize(image, scale)
		for x := 0; x < image.W; x += 7 {
			for y := 0; y < image.H; y += 11 {
				p := geometry.Pt(x, y)
				v := ToView(p, view, content, scale)
				back, ok := ToImage(v, view, content, scale)
				require.True(t, ok, "scale=%v p=%v", scale, p)
				assert.LessOrEqual(t, absInt(back.X-p.X), 1, "scale=%v p=%v", scale, p)
				assert.LessOrEqual(t, absInt(back.Y-p.Y), 1, "scale=%v p=%v", scale, p)
			}
		}
	}
}

func TestRoundTripDownscaled(t *testing.T) {
	view := Size{W: 320, H: 240}
	image := Size{W: 1280, H: 960}

	for _, scale := range []float64{0.25, 0.4, 0.5, 0.8} {
		content := ContentSize(image, scale)
		tol := int(math.Ceil(1 / scale))
		for x := 0; x < image.W; x += 13 {
			p := geometry.Pt(x, x*image.H/image.W)
			back, ok := ToImage(ToView(p, view, content, scale), view, content, scale)
			require.True(t, ok)
			assert.LessOrEqual(t, absInt(back.X-p.X), tol)
			assert.LessOrEqual(t, absInt(back.Y-p.Y), tol)
		}
	}
}

func TestViewportFitAndZoom(t *testing.T) {
	vp := New(Size{W: 800, H: 600}, Size{W: 400, H: 400})
	assert.InDelta(t, 1.5, vp.Scale(), 1e-9)
	assert.InDelta(t, 0.375, vp.MinScale(), 1e-9)
	assert.InDelta(t, 6.0, vp.MaxScale(), 1e-9)

	assert.True(t, vp.ZoomIn())
	assert.InDelta(t, 1.875, vp.Scale(), 1e-9)
	assert.True(t, vp.ZoomOut())
	assert.InDelta(t, 1.5, vp.Scale(), 1e-9)

	// zoom in until the limit, then the request is a no-op
	for vp.ZoomIn() {
	}
	limit := vp.Scale()
	assert.LessOrEqual(t, limit, vp.MaxScale())
	assert.False(t, vp.ZoomIn())
	assert.Equal(t, limit, vp.Scale())

	for vp.ZoomOut() {
	}
	assert.GreaterOrEqual(t, vp.Scale(), vp.MinScale())

	assert.False(t, vp.SetScale(100))
	vp.Fit()
	assert.InDelta(t, 1.5, vp.Scale(), 1e-9)
}

func TestViewportResize(t *testing.T) {
	vp := New(Size{W: 200, H: 200}, Size{W: 100, H: 50})
	assert.InDelta(t, 2.0, vp.Scale(), 1e-9)
	assert.Equal(t, geometry.Pt(0, 50), vp.Offset())

	vp.Resize(Size{W: 100, H: 100})
	assert.InDelta(t, 1.0, vp.Scale(), 1e-9)

	p, ok := vp.ToImage(geometry.Pt(50, 50))
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(50, 25), p)
	assert.Equal(t, geometry.Pt(50, 50), vp.ToView(p))
}

func TestViewportOptions(t *testing.T) {
	vp := NewWithOptions(Size{W: 100, H: 100}, Size{W: 100, H: 100}, Options{ZoomIn: 2, MaxRatio: 2})
	assert.True(t, vp.ZoomIn())
	assert.False(t, vp.ZoomIn())
	assert.InDelta(t, 2.0, vp.Scale(), 1e-9)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
