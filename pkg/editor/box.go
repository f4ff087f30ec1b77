package editor

import (
	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
)

func (e *Engine) boxCreatePress(p geometry.Point) {
	e.pressing = true
	e.anchor = p
	e.preview = geometry.NormalizeRect(p, p)
}

func (e *Engine) boxCreateMove(p geometry.Point) {
	if !e.pressing {
		return
	}
	e.preview = geometry.NormalizeRect(e.anchor, p)
}

func (e *Engine) boxCreateRelease(p geometry.Point, ok bool) {
	if !e.pressing {
		return
	}
	e.pressing = false
	e.preview = geometry.Rect{}
	if !ok {
		return
	}

	if d := geometry.Distance(e.anchor, p); d <= e.cfg.BoxCommitDistance {
		e.log.WithFields(logrus.Fields{"from": e.anchor, "to": p, "distance": d}).Debug("box too small, discarded")
		return
	}
	e.commit(annotation.KindBox, annotation.NewBox(geometry.NormalizeRect(e.anchor, p)))
}

func (e *Engine) boxEditPress(p geometry.Point) {
	e.resetTransient()
	objs := e.store.Objects()

	// Corners first, topmost object first
	for i := len(objs) - 1; i >= 0; i-- {
		box := objs[i].Box()
		if box == nil {
			continue
		}
		for c, corner := range box.Rect.Corners() {
			if geometry.Distance(p, corner) <= e.cfg.BoxVertexRadius {
				e.selectObject(i)
				e.vertex = c
				e.fixed = box.Rect.Corner(geometry.Corner(c).Opposite())
				return
			}
		}
	}

	// Then the containing box whose centre is nearest
	best, bestDist := -1, 0.0
	for i := len(objs) - 1; i >= 0; i-- {
		box := objs[i].Box()
		if box == nil || !box.Rect.Contains(p) {
			continue
		}
		d := geometry.Distance(p, box.Rect.Center())
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		e.deselect()
		return
	}
	e.selectObject(best)
	e.dragging = true
	e.last = p
}

func (e *Engine) boxEditMove(p geometry.Point) {
	if e.vertex < 0 && !e.dragging {
		return
	}
	obj := e.selectedObject()
	if obj == nil {
		return
	}
	box := obj.Box()

	switch {
	case e.vertex >= 0:
		box.Rect = geometry.NormalizeRect(e.fixed, p)
		e.vertex = int(cornerOf(p, e.fixed, geometry.Corner(e.vertex)))
	case e.dragging:
		box.Rect = box.Rect.Translate(p.Sub(e.last))
		e.last = p
	}
	e.emit(ActionUpdated, obj.ID)
}

// cornerOf returns which corner p occupies relative to the fixed opposite
// corner. On a tie the previous side is kept.
func cornerOf(p, fixed geometry.Point, prev geometry.Corner) geometry.Corner {
	right := prev == geometry.TopRight || prev == geometry.BottomRight
	bottom := prev == geometry.BottomLeft || prev == geometry.BottomRight
	if p.X != fixed.X {
		right = p.X > fixed.X
	}
	if p.Y != fixed.Y {
		bottom = p.Y > fixed.Y
	}
	c := geometry.TopLeft
	if right {
		c++
	}
	if bottom {
		c += 2
	}
	return c
}

func (e *Engine) selectObject(id int) {
	if e.selected == id {
		return
	}
	e.selected = id
	e.emit(ActionSelected, id)
}
