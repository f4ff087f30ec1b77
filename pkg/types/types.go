package types

import "github.com/menta2k/image-annotator/pkg/geometry"

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NormalizeBox converts a pixel rectangle to a normalized box for an image of
// the given size
func NormalizeBox(r geometry.Rect, imgW, imgH int) Box {
	if imgW <= 0 || imgH <= 0 {
		return Box{}
	}
	fw, fh := float64(imgW), float64(imgH)
	return Box{
		X: float64(r.X) / fw,
		Y: float64(r.Y) / fh,
		W: float64(r.Width) / fw,
		H: float64(r.Height) / fh,
	}
}

// Center returns the normalized centre of the box
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// NormalizePoint converts a pixel point to normalized coordinates
func NormalizePoint(p geometry.Point, imgW, imgH int) (float64, float64) {
	if imgW <= 0 || imgH <= 0 {
		return 0, 0
	}
	return float64(p.X) / float64(imgW), float64(p.Y) / float64(imgH)
}

// ImageOutput controls how rendered images such as overlays are written
type ImageOutput struct {
	Format   string
	Quality  int
	Lossless bool
}
