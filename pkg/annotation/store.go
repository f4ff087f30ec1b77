package annotation

import (
	"fmt"

	"github.com/menta2k/image-annotator/pkg/geometry"
)

// Store is the ordered collection of objects for one image. Object ids are
// always the contiguous range 0..Len()-1 and double as z-order, with higher
// ids drawn on top.
//
// Store is not safe for concurrent use.
type Store struct {
	objects []*Object
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Add appends a new object and returns its id
func (s *Store) Add(categoryID int, shape Shape) int {
	id := len(s.objects)
	s.objects = append(s.objects, &Object{ID: id, CategoryID: categoryID, Shape: shape})
	return id
}

// AddBox appends a box object
func (s *Store) AddBox(categoryID int, r geometry.Rect) int {
	return s.Add(categoryID, NewBox(r))
}

// AddPolygon appends a polygon object whose first ring is ring
func (s *Store) AddPolygon(categoryID int, ring geometry.Ring) int {
	return s.Add(categoryID, NewPolygon(ring))
}

// AddRing appends a ring to an existing polygon object. It reports false
// when id is unknown or names a box.
func (s *Store) AddRing(id int, ring geometry.Ring) bool {
	obj := s.Get(id)
	if obj == nil {
		return false
	}
	p := obj.Polygon()
	if p == nil {
		return false
	}
	p.AddRing(ring)
	return true
}

// Get returns the object with the given id, or nil
func (s *Store) Get(id int) *Object {
	if id < 0 || id >= len(s.objects) {
		return nil
	}
	return s.objects[id]
}

// Remove deletes the object with the given id and renumbers the remaining
// objects so ids stay contiguous. Unknown ids are ignored.
func (s *Store) Remove(id int) bool {
	if id < 0 || id >= len(s.objects) {
		return false
	}
	copy(s.objects[id:], s.objects[id+1:])
	s.objects[len(s.objects)-1] = nil
	s.objects = s.objects[:len(s.objects)-1]
	s.resequence(id)
	return true
}

// SetCategory relabels an object
func (s *Store) SetCategory(id, categoryID int) bool {
	obj := s.Get(id)
	if obj == nil {
		return false
	}
	obj.CategoryID = categoryID
	return true
}

// Clear removes every object
func (s *Store) Clear() {
	s.objects = nil
}

// Len returns the number of objects
func (s *Store) Len() int {
	return len(s.objects)
}

// Objects returns the objects in id order. The slice is a copy; the objects
// are shared with the store.
func (s *Store) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Replace swaps the store contents for objs, renumbering them in order
func (s *Store) Replace(objs []*Object) {
	s.objects = make([]*Object, 0, len(objs))
	for _, o := range objs {
		if o == nil || o.Shape == nil {
			continue
		}
		s.objects = append(s.objects, o)
	}
	s.resequence(0)
}

// Clone returns a deep copy of the store
func (s *Store) Clone() *Store {
	c := &Store{objects: make([]*Object, len(s.objects))}
	for i, o := range s.objects {
		c.objects[i] = o.Clone()
	}
	return c
}

// Validate checks every category id against a label list of numLabels entries
func (s *Store) Validate(numLabels int) error {
	for _, o := range s.objects {
		if o.CategoryID < 0 || o.CategoryID >= numLabels {
			return &CategoryError{ObjectID: o.ID, CategoryID: o.CategoryID, NumLabels: numLabels}
		}
	}
	return nil
}

func (s *Store) resequence(from int) {
	for i := from; i < len(s.objects); i++ {
		s.objects[i].ID = i
	}
}

// CategoryError reports an object whose category id is outside the label list
type CategoryError struct {
	ObjectID   int
	CategoryID int
	NumLabels  int
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("object %d: category id %d out of range [0,%d)", e.ObjectID, e.CategoryID, e.NumLabels)
}

// Set is the complete annotation state of one image
type Set struct {
	ImagePath   string
	ImageWidth  int
	ImageHeight int
	// ImageData optionally carries the encoded image; nil when absent.
	ImageData *string
	Objects   *Store
}

// NewSet creates an empty set for an image
func NewSet(imagePath string, width, height int) *Set {
	return &Set{
		ImagePath:   imagePath,
		ImageWidth:  width,
		ImageHeight: height,
		Objects:     NewStore(),
	}
}
