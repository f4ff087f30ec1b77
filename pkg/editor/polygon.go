package editor

import (
	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
)

// minRingPoints is the smallest ring that can be closed
const minRingPoints = 3

func (e *Engine) polygonCreatePress(p geometry.Point) {
	snap := e.cfg.PolygonSnapRadius
	switch n := len(e.pending); {
	case n == 0:
		e.pending = append(e.pending, p)
	case n == 1:
		if geometry.Distance(p, e.pending[0]) > snap {
			e.pending = append(e.pending, p)
		}
	case geometry.Distance(p, e.pending[0]) <= snap:
		if n < minRingPoints {
			e.log.WithField("points", n).Debug("ring too short to close")
			return
		}
		ring := e.pending
		e.pending = nil
		e.commit(annotation.KindPolygon, annotation.NewPolygon(ring))
	default:
		e.pending = append(e.pending, p)
	}
}

// hit identifies a polygon part under the pointer
type hit struct {
	object int
	ring   int
	index  int
	edge   bool
}

func (e *Engine) polygonEditPress(p geometry.Point) {
	e.resetTransient()
	objs := e.store.Objects()
	snap := e.cfg.PolygonSnapRadius

	if h, ok := findVertexOrEdge(objs, p, snap); ok {
		e.selectObject(h.object)
		e.ring = h.ring
		if h.edge {
			ring := objs[h.object].Rings()[h.ring]
			e.edge = [2]int{h.index, (h.index + 1) % len(ring)}
			e.hasEdge = true
		} else {
			e.vertex = h.index
		}
		return
	}
	if h, ok := findSmallestContaining(objs, p); ok {
		e.selectObject(h.object)
		e.ring = h.ring
		e.dragging = true
		e.last = p
		return
	}
	e.deselect()
}

func (e *Engine) polygonEditMove(p geometry.Point) {
	if e.vertex < 0 && !e.hasEdge && !e.dragging {
		return
	}
	obj := e.selectedObject()
	if obj == nil {
		return
	}
	poly := obj.Polygon()
	if e.ring < 0 || e.ring >= len(poly.Rings) {
		e.resetTransient()
		return
	}
	ring := poly.Rings[e.ring]

	switch {
	case e.vertex >= 0 && e.vertex < len(ring):
		ring[e.vertex] = p
	case e.hasEdge:
		at := e.edge[1]
		poly.Rings[e.ring] = ring.Insert(at, p)
		e.vertex = at
		e.hasEdge = false
		e.log.WithFields(logrus.Fields{"id": obj.ID, "ring": e.ring, "index": at}).Debug("vertex inserted")
	case e.dragging:
		ring.Translate(p.Sub(e.last))
		e.last = p
	default:
		return
	}
	e.emit(ActionUpdated, obj.ID)
}

// findVertexOrEdge scans polygons topmost first. Within each ring a vertex
// within radius wins over an edge within radius; an edge hit's index is its
// starting vertex.
func findVertexOrEdge(objs []*annotation.Object, p geometry.Point, radius float64) (hit, bool) {
	for i := len(objs) - 1; i >= 0; i-- {
		for r, ring := range objs[i].Rings() {
			for v, q := range ring {
				if geometry.Distance(p, q) <= radius {
					return hit{object: i, ring: r, index: v}, true
				}
			}
			for v := range ring {
				a, b := ring.Edge(v)
				if geometry.DistanceToSegment(p, a, b) <= radius {
					return hit{object: i, ring: r, index: v, edge: true}, true
				}
			}
		}
	}
	return hit{}, false
}

// findSmallestContaining returns the smallest-area ring containing p
func findSmallestContaining(objs []*annotation.Object, p geometry.Point) (hit, bool) {
	best, bestArea := hit{object: -1}, 0.0
	for i := len(objs) - 1; i >= 0; i-- {
		for r, ring := range objs[i].Rings() {
			if !ring.Contains(p) {
				continue
			}
			area := ring.Area()
			if best.object == -1 || area < bestArea {
				best, bestArea = hit{object: i, ring: r}, area
			}
		}
	}
	return best, best.object != -1
}
