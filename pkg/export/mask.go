package export

import (
	"image"
	"image/color"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
	"github.com/menta2k/image-annotator/pkg/labels"
	"github.com/menta2k/image-annotator/pkg/processing"
)

// Palette colours label masks, indexed by category id modulo its length
var Palette = [...]color.NRGBA{
	{143, 195, 54, 255}, {234, 168, 85, 255}, {155, 117, 139, 255}, {59, 64, 124, 255},
	{85, 148, 82, 255}, {116, 4, 28, 255}, {82, 168, 66, 255}, {13, 88, 59, 255},
	{131, 181, 186, 255}, {220, 237, 240, 255}, {85, 199, 53, 255}, {18, 112, 239, 255},
	{9, 3, 187, 255}, {174, 232, 136, 255}, {167, 86, 145, 255}, {254, 125, 249, 255},
	{78, 207, 201, 255}, {36, 118, 183, 255}, {233, 140, 2, 255}, {178, 215, 249, 255},
	{84, 234, 239, 255}, {63, 206, 2, 255}, {153, 213, 184, 255}, {88, 142, 138, 255},
	{98, 209, 121, 255}, {57, 12, 107, 255}, {22, 147, 117, 255}, {253, 62, 126, 255},
	{30, 237, 74, 255},
}

// CategoryColor returns the palette colour for a category id
func CategoryColor(categoryID int) color.NRGBA {
	n := len(Palette)
	return Palette[((categoryID%n)+n)%n]
}

// objectRings returns the fill outline of an object. A box becomes its four
// corners in drawing order.
func objectRings(obj *annotation.Object) []geometry.Ring {
	if rings := obj.Rings(); rings != nil {
		return rings
	}
	c := obj.BBox().Corners()
	return []geometry.Ring{{
		c[geometry.TopLeft], c[geometry.TopRight], c[geometry.BottomRight], c[geometry.BottomLeft],
	}}
}

// maskRenderer draws the mask images for one annotation set
type maskRenderer struct {
	proc *processing.Processor
}

// labelMask fills each object with its category colour on black, later
// objects on top
func (m *maskRenderer) labelMask(set *annotation.Set) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, set.ImageWidth, set.ImageHeight))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	for _, obj := range set.Objects.Objects() {
		m.proc.FillRings(img, objectRings(obj), CategoryColor(obj.CategoryID))
	}
	return img
}

// instanceMask writes id+1 for each object, 0 for background
func (m *maskRenderer) instanceMask(set *annotation.Set) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, set.ImageWidth, set.ImageHeight))
	for _, obj := range set.Objects.Objects() {
		v := obj.ID + 1
		if v > 255 {
			v = 255
		}
		m.proc.FillRings(img, objectRings(obj), color.Gray{Y: uint8(v)})
	}
	return img
}

// overlay blends the label mask over the source image at 50% and labels
// every object with its category name
func (m *maskRenderer) overlay(src image.Image, mask *image.NRGBA, set *annotation.Set, names *labels.List) *image.NRGBA {
	out := m.proc.Blend(src, mask, 0.5)
	for _, obj := range set.Objects.Objects() {
		c := CategoryColor(obj.CategoryID)
		if obj.Kind() == annotation.KindBox {
			m.proc.DrawRect(out, obj.BBox(), c, 2)
		} else {
			for _, ring := range obj.Rings() {
				m.proc.DrawRing(out, ring, c)
			}
		}
		name, ok := names.Name(obj.CategoryID)
		if !ok {
			continue
		}
		bb := obj.BBox()
		m.proc.DrawText(out, geometry.Pt(bb.X+2, bb.Y+2), name, color.White)
	}
	return out
}
