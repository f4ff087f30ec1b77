// Package annotation holds the in-memory annotation model: labelled box and
// polygon objects for a single image, kept in an id-ordered store.
package annotation

import (
	"fmt"

	"github.com/menta2k/image-annotator/pkg/geometry"
)

// Kind identifies the shape family an object belongs to
type Kind int

const (
	KindBox Kind = iota
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is the geometry of an annotated object. It is implemented by *Box
// and *Polygon only.
type Shape interface {
	Kind() Kind
	Bounds() geometry.Rect
	Clone() Shape
	shape()
}

// Box is an axis-aligned bounding box shape
type Box struct {
	Rect geometry.Rect
}

// NewBox wraps r as a shape
func NewBox(r geometry.Rect) *Box {
	return &Box{Rect: r}
}

func (b *Box) Kind() Kind { return KindBox }
func (b *Box) Bounds() geometry.Rect { return b.Rect }
func (b *Box) shape() {}

func (b *Box) Clone() Shape {
	c := *b
	return &c
}

// Polygon is a shape made of one or more closed rings. Its bounding box is
// always derived from the rings.
type Polygon struct {
	Rings []geometry.Ring
}

// NewPolygon builds a polygon from its first ring
func NewPolygon(ring geometry.Ring) *Polygon {
	return &Polygon{Rings: []geometry.Ring{ring.Clone()}}
}

func (p *Polygon) Kind() Kind { return KindPolygon }
func (p *Polygon) Bounds() geometry.Rect { return geometry.RingsBounds(p.Rings) }
func (p *Polygon) shape() {}

func (p *Polygon) Clone() Shape {
	rings := make([]geometry.Ring, len(p.Rings))
	for i, r := range p.Rings {
		rings[i] = r.Clone()
	}
	return &Polygon{Rings: rings}
}

// AddRing appends another ring to the polygon
func (p *Polygon) AddRing(ring geometry.Ring) {
	p.Rings = append(p.Rings, ring.Clone())
}

// Object is a labelled shape on the current image
type Object struct {
	ID         int
	CategoryID int
	Shape      Shape
}

// Kind returns the kind of the object's shape
func (o *Object) Kind() Kind {
	return o.Shape.Kind()
}

// BBox returns the object's bounding box
func (o *Object) BBox() geometry.Rect {
	return o.Shape.Bounds()
}

// Rings returns the polygon rings, or nil for a box
func (o *Object) Rings() []geometry.Ring {
	if p, ok := o.Shape.(*Polygon); ok {
		return p.Rings
	}
	return nil
}

// Polygon returns the polygon shape, or nil for a box
func (o *Object) Polygon() *Polygon {
	p, _ := o.Shape.(*Polygon)
	return p
}

// Box returns the box shape, or nil for a polygon
func (o *Object) Box() *Box {
	b, _ := o.Shape.(*Box)
	return b
}

// Clone returns a deep copy of the object
func (o *Object) Clone() *Object {
	return &Object{ID: o.ID, CategoryID: o.CategoryID, Shape: o.Shape.Clone()}
}
