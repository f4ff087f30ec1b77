package editor

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-annotator/pkg/annotation"
	"github.com/menta2k/image-annotator/pkg/geometry"
	"github.com/menta2k/image-annotator/pkg/labels"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *annotation.Store) {
	t.Helper()
	store := annotation.NewStore()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(store, opts...), store
}

func pt(x, y int) geometry.Point {
	return geometry.Pt(x, y)
}

func drag(e *Engine, from, to geometry.Point) {
	e.Press(from, true)
	e.Move(to, true)
	e.Release(to, true)
}

func clickAll(e *Engine, pts ...geometry.Point) {
	for _, p := range pts {
		e.Press(p, true)
		e.Release(p, true)
	}
}

func fixedLabel(category, target int) LabelSelector {
	return LabelSelectorFunc(func(annotation.Kind) (Label, bool) {
		return Label{CategoryID: category, TargetID: target}, true
	})
}

func TestBoxCreateCommits(t *testing.T) {
	e, store := newEngine(t, WithSelector(fixedLabel(2, NoTarget)))

	e.Press(pt(10, 10), true)
	e.Move(pt(60, 40), true)
	require.NotNil(t, e.State().Preview)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 50, Height: 30}, *e.State().Preview)
	e.Move(pt(100, 80), true)
	e.Release(pt(100, 80), true)

	require.Equal(t, 1, store.Len())
	obj := store.Get(0)
	assert.Equal(t, 0, obj.ID)
	assert.Equal(t, 2, obj.CategoryID)
	assert.Equal(t, annotation.KindBox, obj.Kind())
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 90, Height: 70}, obj.BBox())
	assert.Nil(t, e.State().Preview)
}

func TestBoxCreateNormalisesReverseDrag(t *testing.T) {
	e, store := newEngine(t)

	drag(e, pt(100, 80), pt(10, 10))

	require.Equal(t, 1, store.Len())
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 90, Height: 70}, store.Get(0).BBox())
}

func TestShortBoxIsDiscarded(t *testing.T) {
	e, store := newEngine(t)

	drag(e, pt(10, 10), pt(13, 14))
	assert.Zero(t, store.Len())

	// exactly the threshold is still too short
	drag(e, pt(0, 0), pt(12, 16))
	assert.Zero(t, store.Len())
}

func TestBoxReleaseOutsideImageDiscards(t *testing.T) {
	e, store := newEngine(t)

	e.Press(pt(10, 10), true)
	e.Move(pt(200, 200), true)
	e.Release(geometry.Point{}, false)

	assert.Zero(t, store.Len())
	assert.Nil(t, e.State().Preview)
}

func TestEventsOutsideImageAreIgnored(t *testing.T) {
	e, store := newEngine(t, WithSelector(fixedLabel(0, NoTarget)))
	e.SetKind(annotation.KindPolygon)

	e.Press(pt(0, 0), false)
	e.Move(pt(5, 5), false)
	assert.Empty(t, e.State().Pending)
	assert.Zero(t, store.Len())
}

func TestCancelledLabelDiscardsShape(t *testing.T) {
	cancel := LabelSelectorFunc(func(annotation.Kind) (Label, bool) { return Label{}, false })
	e, store := newEngine(t, WithSelector(cancel))

	drag(e, pt(0, 0), pt(100, 100))
	assert.Zero(t, store.Len())
}

func TestCategoryOutsideLabelListIsRejected(t *testing.T) {
	e, store := newEngine(t,
		WithSelector(fixedLabel(5, NoTarget)),
		WithLabels(labels.New("a", "b")),
	)

	drag(e, pt(0, 0), pt(100, 100))
	assert.Zero(t, store.Len())
}

func TestBoxCornerHitWinsOverContainment(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	store.AddBox(0, geometry.Rect{X: 40, Y: 40, Width: 20, Height: 20})
	e.SetMode(ModeEdit)

	// (95,95) lies inside box 0 but within the vertex radius of its BR corner,
	// and inside no other box; the corner grab must win over the drag.
	e.Press(pt(95, 95), true)
	st := e.State()
	assert.Equal(t, 0, st.Selected)
	assert.Equal(t, int(geometry.BottomRight), st.Vertex)
	assert.False(t, st.Dragging)
}

func TestBoxSelectNearestCentre(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200})
	store.AddBox(0, geometry.Rect{X: 100, Y: 100, Width: 60, Height: 60})
	e.SetMode(ModeEdit)

	e.Press(pt(128, 132), true)
	assert.Equal(t, 1, e.Selected())
	assert.True(t, e.State().Dragging)
	e.Release(pt(128, 132), true)

	e.Press(pt(60, 100), true)
	assert.Equal(t, 0, e.Selected())
	e.Release(pt(60, 100), true)

	e.Press(pt(500, 500), true)
	assert.Equal(t, -1, e.Selected())
}

func TestBoxCornerResize(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{X: 10, Y: 10, Width: 90, Height: 70})
	e.SetMode(ModeEdit)

	e.Press(pt(100, 80), true)
	require.Equal(t, int(geometry.BottomRight), e.State().Vertex)
	e.Move(pt(120, 90), true)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 110, Height: 80}, store.Get(0).BBox())

	// dragging past the fixed corner flips the box
	e.Move(pt(0, 0), true)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, store.Get(0).BBox())
	assert.Equal(t, int(geometry.TopLeft), e.State().Vertex)

	e.Release(pt(0, 0), true)
	st := e.State()
	assert.Equal(t, -1, st.Vertex)
	assert.Equal(t, 0, st.Selected, "release keeps the selection")
}

func TestBoxDragIsIncremental(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100})
	e.SetMode(ModeEdit)

	e.Press(pt(150, 150), true)
	e.Move(pt(160, 150), true)
	e.Move(pt(170, 155), true)
	e.Release(pt(170, 155), true)

	assert.Equal(t, geometry.Rect{X: 120, Y: 105, Width: 100, Height: 100}, store.Get(0).BBox())

	// a second drag starts from the new position
	e.Press(pt(170, 155), true)
	e.Move(pt(170, 145), true)
	assert.Equal(t, geometry.Rect{X: 120, Y: 95, Width: 100, Height: 100}, store.Get(0).BBox())
}

func TestPolygonCreateCloses(t *testing.T) {
	e, store := newEngine(t, WithSelector(fixedLabel(1, NoTarget)))
	e.SetKind(annotation.KindPolygon)

	clickAll(e, pt(0, 0), pt(50, 0), pt(50, 50))
	assert.Len(t, e.State().Pending, 3)
	clickAll(e, pt(3, 3))

	require.Equal(t, 1, store.Len())
	obj := store.Get(0)
	require.Len(t, obj.Rings(), 1)
	assert.Equal(t, geometry.Ring{pt(0, 0), pt(50, 0), pt(50, 50)}, obj.Rings()[0])
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 50, Height: 50}, obj.BBox())
	assert.Equal(t, 1, obj.CategoryID)
	assert.Empty(t, e.State().Pending)
}

func TestPolygonSecondPointNeedsDistance(t *testing.T) {
	e, _ := newEngine(t)
	e.SetKind(annotation.KindPolygon)

	clickAll(e, pt(0, 0), pt(5, 5))
	assert.Len(t, e.State().Pending, 1)
	clickAll(e, pt(20, 0))
	assert.Len(t, e.State().Pending, 2)
}

func TestPolygonCannotCloseWithTwoPoints(t *testing.T) {
	e, store := newEngine(t)
	e.SetKind(annotation.KindPolygon)

	clickAll(e, pt(0, 0), pt(50, 0), pt(2, 2))
	assert.Zero(t, store.Len())
	assert.Len(t, e.State().Pending, 2)
}

func TestPolygonRingJoinsTarget(t *testing.T) {
	e, store := newEngine(t)
	e.SetKind(annotation.KindPolygon)

	clickAll(e, pt(0, 0), pt(50, 0), pt(50, 50), pt(0, 0))
	require.Equal(t, 1, store.Len())

	e.SetSelector(fixedLabel(0, 0))
	clickAll(e, pt(100, 100), pt(150, 100), pt(150, 150), pt(101, 101))

	require.Equal(t, 1, store.Len())
	obj := store.Get(0)
	assert.Len(t, obj.Rings(), 2)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 150, Height: 150}, obj.BBox())
}

func TestPolygonRingWithBadTargetIsDiscarded(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{Width: 10, Height: 10})
	e.SetKind(annotation.KindPolygon)
	e.SetSelector(fixedLabel(0, 0))

	clickAll(e, pt(100, 100), pt(150, 100), pt(150, 150), pt(100, 100))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, annotation.KindBox, store.Get(0).Kind())
}

func TestPolygonVertexDrag(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(98, 97), true)
	st := e.State()
	assert.Equal(t, 0, st.Selected)
	assert.Equal(t, 2, st.Vertex)

	e.Move(pt(150, 120), true)
	e.Release(pt(150, 120), true)
	assert.Equal(t, pt(150, 120), store.Get(0).Rings()[0][2])
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 150, Height: 120}, store.Get(0).BBox())
}

func TestPolygonEdgeInsertsVertex(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(50, 3), true)
	st := e.State()
	require.True(t, st.HasEdge)
	assert.Equal(t, [2]int{0, 1}, st.Edge)

	e.Move(pt(50, -20), true)
	ring := store.Get(0).Rings()[0]
	assert.Equal(t, geometry.Ring{pt(0, 0), pt(50, -20), pt(100, 0), pt(100, 100), pt(0, 100)}, ring)
	st = e.State()
	assert.False(t, st.HasEdge)
	assert.Equal(t, 1, st.Vertex)

	// further motion moves the inserted vertex instead of inserting again
	e.Move(pt(50, -30), true)
	ring = store.Get(0).Rings()[0]
	assert.Len(t, ring, 5)
	assert.Equal(t, pt(50, -30), ring[1])
	assert.Equal(t, -30, store.Get(0).BBox().Y)
}

func TestPolygonClosingEdgeInsertsAtFront(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(2, 50), true)
	require.Equal(t, [2]int{3, 0}, e.State().Edge)
	e.Move(pt(-10, 50), true)

	ring := store.Get(0).Rings()[0]
	assert.Equal(t, geometry.Ring{pt(-10, 50), pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)}, ring)
}

func TestPolygonTopmostEdgeBeatsLowerVertex(t *testing.T) {
	e, store := newEngine(t)
	// lower object owns a vertex under the click
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(50, 0), pt(50, 50)})
	// topmost object only has an edge near the click
	store.AddPolygon(0, geometry.Ring{pt(0, 55), pt(100, 55), pt(100, 100), pt(0, 100)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(50, 50), true)
	st := e.State()
	assert.Equal(t, 1, st.Selected)
	assert.True(t, st.HasEdge)
	assert.Equal(t, [2]int{0, 1}, st.Edge)
	assert.Equal(t, -1, st.Vertex)
}

func TestPolygonVertexBeatsEdgeWithinRing(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(50, 0), pt(50, 50)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	// within reach of vertex 1 and of edges (0,1) and (1,2)
	e.Press(pt(48, 3), true)
	st := e.State()
	assert.Equal(t, 0, st.Selected)
	assert.Equal(t, 1, st.Vertex)
	assert.False(t, st.HasEdge)
}

func TestPolygonDragSelectsSmallestArea(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(300, 0), pt(300, 300), pt(0, 300)})
	store.AddPolygon(0, geometry.Ring{pt(100, 100), pt(200, 100), pt(200, 200), pt(100, 200)})
	store.AddPolygon(0, geometry.Ring{pt(50, 50), pt(250, 50), pt(250, 250), pt(50, 250)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(150, 150), true)
	st := e.State()
	assert.Equal(t, 1, st.Selected)
	assert.True(t, st.Dragging)

	e.Move(pt(160, 150), true)
	e.Move(pt(165, 160), true)
	e.Release(pt(165, 160), true)
	assert.Equal(t, geometry.Rect{X: 115, Y: 110, Width: 100, Height: 100}, store.Get(1).BBox())
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 300, Height: 300}, store.Get(0).BBox())
}

func TestPolygonDragMovesOnlyTheHitRing(t *testing.T) {
	e, store := newEngine(t)
	id := store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(50, 0), pt(50, 50), pt(0, 50)})
	store.AddRing(id, geometry.Ring{pt(200, 200), pt(250, 200), pt(250, 250), pt(200, 250)})
	e.SetKind(annotation.KindPolygon)
	e.SetMode(ModeEdit)

	e.Press(pt(225, 225), true)
	require.Equal(t, 1, e.State().Ring)
	e.Move(pt(235, 225), true)

	rings := store.Get(id).Rings()
	assert.Equal(t, pt(0, 0), rings[0][0])
	assert.Equal(t, pt(210, 200), rings[1][0])
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 260, Height: 250}, store.Get(id).BBox())
}

func TestHitTestsIgnoreOtherKind(t *testing.T) {
	e, store := newEngine(t)
	store.AddPolygon(0, geometry.Ring{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)})
	e.SetMode(ModeEdit)

	e.Press(pt(50, 50), true)
	assert.Equal(t, -1, e.Selected())

	e.SetKind(annotation.KindPolygon)
	e.Press(pt(50, 50), true)
	assert.Equal(t, 0, e.Selected())
}

func TestDeleteSwitchesToCreate(t *testing.T) {
	e, store := newEngine(t)
	for i := 0; i < 3; i++ {
		store.AddBox(i, geometry.Rect{X: i * 100, Y: 0, Width: 50, Height: 50})
	}
	e.SetMode(ModeEdit)
	e.Select(1)

	e.SetMode(ModeDelete)
	assert.Equal(t, ModeCreate, e.Mode())
	assert.Equal(t, -1, e.Selected())
	require.Equal(t, 2, store.Len())
	assert.Equal(t, 2, store.Get(1).CategoryID)
	assert.Equal(t, 1, store.Get(1).ID)

	// with nothing selected delete still lands in create mode
	e.SetMode(ModeEdit)
	e.SetMode(ModeDelete)
	assert.Equal(t, ModeCreate, e.Mode())
	assert.Equal(t, 2, store.Len())
}

func TestClearSwitchesToNone(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{Width: 50, Height: 50})
	e.SetKind(annotation.KindPolygon)
	clickAll(e, pt(0, 0), pt(50, 0))

	e.SetMode(ModeClear)
	assert.Equal(t, ModeNone, e.Mode())
	assert.Zero(t, store.Len())
	assert.Empty(t, e.State().Pending)

	// in none mode presses do nothing
	clickAll(e, pt(0, 0), pt(50, 0), pt(50, 50), pt(0, 0))
	assert.Zero(t, store.Len())
}

func TestSelectByID(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{Width: 50, Height: 50})

	e.Select(0)
	assert.Equal(t, 0, e.Selected())
	e.Select(-1)
	assert.Equal(t, -1, e.Selected())
	e.Select(9)
	assert.Equal(t, -1, e.Selected())
}

func TestStaleSelectionIsDropped(t *testing.T) {
	e, store := newEngine(t)
	store.AddBox(0, geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	e.SetMode(ModeEdit)
	e.Press(pt(50, 50), true)
	require.Equal(t, 0, e.Selected())

	store.Clear()
	assert.NotPanics(t, func() { e.Move(pt(60, 60), true) })
	assert.Equal(t, -1, e.Selected())
}

func TestChangeEvents(t *testing.T) {
	e, store := newEngine(t)
	var events []Event
	e.OnChange(func(ev Event) { events = append(events, ev) })

	drag(e, pt(0, 0), pt(100, 100))
	e.SetMode(ModeEdit)
	e.Press(pt(50, 50), true)
	e.Move(pt(55, 50), true)
	e.Release(pt(55, 50), true)
	e.SetMode(ModeDelete)
	store.AddBox(0, geometry.Rect{Width: 30, Height: 30})
	e.SetMode(ModeClear)

	assert.Equal(t, []Event{
		{Action: ActionAdded, ObjectID: 0},
		{Action: ActionSelected, ObjectID: 0},
		{Action: ActionUpdated, ObjectID: 0},
		{Action: ActionRemoved, ObjectID: 0},
		{Action: ActionCleared, ObjectID: -1},
	}, events)
}

func TestModeAndActionStrings(t *testing.T) {
	assert.Equal(t, "edit", ModeEdit.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
	assert.Equal(t, "removed", ActionRemoved.String())
}

func TestSetCategory(t *testing.T) {
	e, store := newEngine(t, WithLabels(labels.New("a", "b")))
	id := store.AddBox(0, geometry.Rect{X: 0, Y: 0, Width: 30, Height: 30})

	var events []Event
	e.OnChange(func(ev Event) { events = append(events, ev) })

	require.True(t, e.SetCategory(id, 1))
	assert.Equal(t, 1, store.Get(id).CategoryID)
	assert.Equal(t, []Event{{Action: ActionUpdated, ObjectID: id}}, events)

	assert.False(t, e.SetCategory(id, 2), "outside the label list")
	assert.False(t, e.SetCategory(5, 0), "unknown object")
	assert.Equal(t, 1, store.Get(id).CategoryID)
	assert.Len(t, events, 1)
}
