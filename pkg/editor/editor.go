// Package editor implements the interactive edit state machine that turns
// press, move and release events in image coordinates into box and polygon
// annotations.
package editor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
	"github.com/menta2k/image-annotator/pkg/labels"
)

// Mode is the current editing mode
type Mode int

const (
	ModeNone Mode = iota
	ModeCreate
	ModeEdit
	ModeDelete
	ModeClear
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeDelete:
		return "delete"
	case ModeClear:
		return "clear"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// NoTarget is the Label.TargetID that requests a new object
const NoTarget = -1

// Label is the answer of a LabelSelector. TargetID is NoTarget for a new
// object, or the id of an existing polygon the new ring should join.
type Label struct {
	CategoryID int
	TargetID   int
}

// LabelSelector is asked for a category whenever a shape is completed.
// Returning false cancels the commit and the shape is discarded.
type LabelSelector interface {
	SelectLabel(kind annotation.Kind) (Label, bool)
}

// LabelSelectorFunc adapts a function to LabelSelector
type LabelSelectorFunc func(kind annotation.Kind) (Label, bool)

func (f LabelSelectorFunc) SelectLabel(kind annotation.Kind) (Label, bool) {
	return f(kind)
}

// Config holds hit-test and commit thresholds in image pixels
type Config struct {
	// BoxCommitDistance is the drag distance a new box must exceed.
	BoxCommitDistance float64
	// BoxVertexRadius is the grab radius around box corners.
	BoxVertexRadius float64
	// PolygonSnapRadius is the grab radius for polygon vertices and edges,
	// and the snap distance for closing a ring.
	PolygonSnapRadius float64
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() Config {
	return Config{
		BoxCommitDistance: 20,
		BoxVertexRadius:   20,
		PolygonSnapRadius: 10,
	}
}

// Action describes a change to the object list
type Action int

const (
	ActionAdded Action = iota
	ActionUpdated
	ActionRemoved
	ActionCleared
	ActionSelected
)

func (a Action) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionUpdated:
		return "updated"
	case ActionRemoved:
		return "removed"
	case ActionCleared:
		return "cleared"
	case ActionSelected:
		return "selected"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Event is delivered to change listeners. ObjectID is -1 for Cleared and for
// a deselection.
type Event struct {
	Action   Action
	ObjectID int
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig overrides the thresholds
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithLabels validates committed categories against a label list
func WithLabels(l *labels.List) Option {
	return func(e *Engine) { e.labels = l }
}

// WithSelector sets the label selector. Without one every shape is committed
// as a new object with category 0.
func WithSelector(s LabelSelector) Option {
	return func(e *Engine) { e.selector = s }
}

// Engine is the edit state machine for one annotation store.
//
// Engine is not safe for concurrent use; events must arrive on one goroutine.
type Engine struct {
	store     *annotation.Store
	labels    *labels.List
	selector  LabelSelector
	cfg       Config
	log       *logrus.Logger
	listeners []func(Event)

	mode Mode
	kind annotation.Kind

	// selection
	selected int
	ring     int
	vertex   int
	edge     [2]int
	hasEdge  bool
	dragging bool
	last     geometry.Point

	// box being created and the fixed corner during a box resize
	pressing bool
	anchor   geometry.Point
	preview  geometry.Rect
	fixed    geometry.Point

	// polygon ring being created
	pending geometry.Ring
	cursor  geometry.Point
}

// New creates an engine editing store
func New(store *annotation.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		cfg:   DefaultConfig(),
		log:   logrus.StandardLogger(),
		mode:  ModeCreate,
		kind:  annotation.KindBox,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetTransient()
	e.selected = -1
	return e
}

// Store returns the store being edited
func (e *Engine) Store() *annotation.Store {
	return e.store
}

// SetStore switches to another image's store and resets the session
func (e *Engine) SetStore(store *annotation.Store) {
	e.store = store
	e.Reset()
}

// SetSelector replaces the label selector
func (e *Engine) SetSelector(s LabelSelector) {
	e.selector = s
}

// OnChange registers a listener for object list changes
func (e *Engine) OnChange(fn func(Event)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) emit(action Action, id int) {
	ev := Event{Action: action, ObjectID: id}
	for _, fn := range e.listeners {
		fn(ev)
	}
}

// Mode returns the current mode
func (e *Engine) Mode() Mode {
	return e.mode
}

// Kind returns the active shape kind
func (e *Engine) Kind() annotation.Kind {
	return e.kind
}

// SetKind switches between box and polygon editing. The selection is
// dropped because hit-tests only consider objects of the active kind.
func (e *Engine) SetKind(k annotation.Kind) {
	if k == e.kind {
		return
	}
	e.kind = k
	e.resetTransient()
	e.deselect()
}

// SetMode changes the mode. ModeDelete removes the selected object and then
// switches to ModeCreate; ModeClear removes every object and then switches to
// ModeNone.
func (e *Engine) SetMode(m Mode) {
	switch m {
	case ModeDelete:
		e.deleteSelected()
		e.mode = ModeCreate
	case ModeClear:
		e.clearAll()
		e.mode = ModeNone
	default:
		e.resetTransient()
		e.mode = m
	}
	e.log.WithFields(logrus.Fields{"mode": e.mode, "kind": e.kind}).Debug("editor mode changed")
}

// Select selects an object by id; -1 or an unknown id deselects
func (e *Engine) Select(id int) {
	e.resetTransient()
	if e.store.Get(id) == nil {
		e.deselect()
		return
	}
	e.selected = id
	e.emit(ActionSelected, id)
}

// SetCategory relabels an object. It returns false when the object does
// not exist or the category is outside the label list.
func (e *Engine) SetCategory(id, categoryID int) bool {
	if e.labels != nil && !e.labels.Valid(categoryID) {
		e.log.WithFields(logrus.Fields{"id": id, "category": categoryID}).Warn("category outside label list")
		return false
	}
	if categoryID < 0 || !e.store.SetCategory(id, categoryID) {
		return false
	}
	e.log.WithFields(logrus.Fields{"id": id, "category": categoryID}).Info("object relabelled")
	e.emit(ActionUpdated, id)
	return true
}

// Selected returns the selected object id, or -1
func (e *Engine) Selected() int {
	return e.selected
}

// Reset clears the selection and any in-progress shape. The mode and kind
// are kept.
func (e *Engine) Reset() {
	e.resetTransient()
	e.selected = -1
}

func (e *Engine) deselect() {
	if e.selected == -1 {
		return
	}
	e.selected = -1
	e.emit(ActionSelected, -1)
}

func (e *Engine) resetTransient() {
	e.ring = -1
	e.vertex = -1
	e.hasEdge = false
	e.dragging = false
	e.pressing = false
	e.preview = geometry.Rect{}
	e.pending = nil
}

func (e *Engine) deleteSelected() {
	e.resetTransient()
	id := e.selected
	e.selected = -1
	if !e.store.Remove(id) {
		return
	}
	e.log.WithField("id", id).Info("object removed")
	e.emit(ActionRemoved, id)
}

func (e *Engine) clearAll() {
	e.resetTransient()
	e.selected = -1
	e.store.Clear()
	e.log.Info("objects cleared")
	e.emit(ActionCleared, -1)
}

// Press handles a pointer press. ok is false when the pointer is outside the
// image, in which case the event is ignored.
func (e *Engine) Press(p geometry.Point, ok bool) {
	if !ok {
		return
	}
	switch {
	case e.mode == ModeCreate && e.kind == annotation.KindBox:
		e.boxCreatePress(p)
	case e.mode == ModeEdit && e.kind == annotation.KindBox:
		e.boxEditPress(p)
	case e.mode == ModeCreate && e.kind == annotation.KindPolygon:
		e.polygonCreatePress(p)
	case e.mode == ModeEdit && e.kind == annotation.KindPolygon:
		e.polygonEditPress(p)
	}
}

// Move handles pointer motion
func (e *Engine) Move(p geometry.Point, ok bool) {
	if !ok {
		return
	}
	e.cursor = p
	switch {
	case e.mode == ModeCreate && e.kind == annotation.KindBox:
		e.boxCreateMove(p)
	case e.mode == ModeEdit && e.kind == annotation.KindBox:
		e.boxEditMove(p)
	case e.mode == ModeEdit && e.kind == annotation.KindPolygon:
		e.polygonEditMove(p)
	}
}

// Release handles a pointer release. A release outside the image ends any
// drag and discards a box being drawn.
func (e *Engine) Release(p geometry.Point, ok bool) {
	switch {
	case e.mode == ModeCreate && e.kind == annotation.KindBox:
		e.boxCreateRelease(p, ok)
	case e.mode == ModeEdit:
		e.vertex = -1
		e.hasEdge = false
		e.dragging = false
	}
}

// selectedObject returns the selected object when it still exists and has
// the active kind. A stale selection is dropped.
func (e *Engine) selectedObject() *annotation.Object {
	obj := e.store.Get(e.selected)
	if obj == nil || obj.Kind() != e.kind {
		if e.selected != -1 {
			e.log.WithField("id", e.selected).Debug("dropping stale selection")
		}
		e.resetTransient()
		e.selected = -1
		return nil
	}
	return obj
}

func (e *Engine) commit(kind annotation.Kind, shape annotation.Shape) {
	lbl := Label{CategoryID: 0, TargetID: NoTarget}
	if e.selector != nil {
		var ok bool
		lbl, ok = e.selector.SelectLabel(kind)
		if !ok {
			e.log.WithField("kind", kind).Debug("label selection cancelled, shape discarded")
			return
		}
	}
	if e.labels != nil && !e.labels.Valid(lbl.CategoryID) {
		e.log.WithFields(logrus.Fields{
			"kind":     kind,
			"category": lbl.CategoryID,
			"labels":   e.labels.Len(),
		}).Warn("category outside label list, shape discarded")
		return
	}

	if lbl.TargetID != NoTarget && kind == annotation.KindPolygon {
		poly := shape.(*annotation.Polygon)
		if !e.store.AddRing(lbl.TargetID, poly.Rings[0]) {
			e.log.WithField("target", lbl.TargetID).Warn("target is not a polygon object, ring discarded")
			return
		}
		e.log.WithFields(logrus.Fields{"id": lbl.TargetID, "points": len(poly.Rings[0])}).Info("ring added to object")
		e.emit(ActionUpdated, lbl.TargetID)
		return
	}

	id := e.store.Add(lbl.CategoryID, shape)
	e.log.WithFields(logrus.Fields{
		"id":       id,
		"kind":     kind,
		"category": lbl.CategoryID,
		"bbox":     shape.Bounds(),
	}).Info("object added")
	e.emit(ActionAdded, id)
}

// State is a read-only snapshot for rendering
type State struct {
	Mode     Mode
	Kind     annotation.Kind
	Selected int
	Ring     int
	Vertex   int
	Edge     [2]int
	HasEdge  bool
	Dragging bool
	// Preview is the box being drawn, nil when none.
	Preview *geometry.Rect
	// Pending is the unfinished polygon ring.
	Pending geometry.Ring
	Cursor  geometry.Point
}

// State returns a snapshot of the edit session
func (e *Engine) State() State {
	s := State{
		Mode:     e.mode,
		Kind:     e.kind,
		Selected: e.selected,
		Ring:     e.ring,
		Vertex:   e.vertex,
		Edge:     e.edge,
		HasEdge:  e.hasEdge,
		Dragging: e.dragging,
		Pending:  e.pending.Clone(),
		Cursor:   e.cursor,
	}
	if e.pressing {
		r := e.preview
		s.Preview = &r
	}
	return s
}
