package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/vector"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-annotator/pkg/geometry"
)

// Processor handles image loading, encoding and mask drawing
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// DecodeImage decodes an image from byte data with WebP support
func (p *Processor) DecodeImage(data []byte) (image.Image, error) {
	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ImageSize reads only the header of an image file
func (p *Processor) ImageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("image: failed to read header of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Encode writes img to w in the given format (png, jpg, webp, bmp, tiff)
func (p *Processor) Encode(w io.Writer, img image.Image, format string, quality int, lossless bool) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "webp" {
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(w, img, opts)
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("image: unsupported output format %q", format)
	}
	if f == imaging.JPEG {
		return imaging.Encode(w, img, f, imaging.JPEGQuality(quality))
	}
	return imaging.Encode(w, img, f)
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(f, img, format, quality, lossless); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Blend draws top over base at the given opacity
func (p *Processor) Blend(base, top image.Image, opacity float64) *image.NRGBA {
	return imaging.Overlay(base, top, image.Pt(0, 0), opacity)
}

// RasterizeRings returns a w x h coverage mask of the rings. Each ring is
// filled separately and coverage is thresholded to hard edges.
func (p *Processor) RasterizeRings(w, h int, rings []geometry.Ring) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return mask
	}
	z := vector.NewRasterizer(w, h)
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		z.Reset(w, h)
		z.DrawOp = draw.Over
		z.MoveTo(float32(ring[0].X), float32(ring[0].Y))
		for _, q := range ring[1:] {
			z.LineTo(float32(q.X), float32(q.Y))
		}
		z.ClosePath()
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	}
	for i, a := range mask.Pix {
		if a >= 0x80 {
			mask.Pix[i] = 0xff
		} else {
			mask.Pix[i] = 0
		}
	}
	return mask
}

// FillRings paints c into dst wherever the rings cover
func (p *Processor) FillRings(dst draw.Image, rings []geometry.Ring, c color.Color) {
	b := dst.Bounds()
	mask := p.RasterizeRings(b.Dx(), b.Dy(), rings)
	draw.DrawMask(dst, b, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawRect outlines r on img
func (p *Processor) DrawRect(img *image.NRGBA, r geometry.Rect, c color.NRGBA, stroke int) {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width+1, r.Y+r.Height+1
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

// DrawRing outlines a closed ring on img
func (p *Processor) DrawRing(img *image.NRGBA, ring geometry.Ring, c color.NRGBA) {
	for i := range ring {
		a, b := ring.Edge(i)
		drawLine(img, a, b, c)
	}
}

// DrawText writes text with its top-left corner at pt
func (p *Processor) DrawText(img draw.Image, pt geometry.Point, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Ascent),
	}
	d.DrawString(text)
}

// Helper functions
func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	i := img.PixOffset(x, y)
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

// drawLine is Bresenham between a and b, endpoints included
func drawLine(img *image.NRGBA, a, b geometry.Point, c color.NRGBA) {
	dx, dy := absInt(b.X-a.X), -absInt(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		setPixel(img, x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
