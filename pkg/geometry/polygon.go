package geometry

// Ring is a closed polygon boundary. The closing edge from the last point
// back to the first is implicit.
type Ring []Point

// Clone returns a copy of the ring
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// Translate moves every vertex of the ring by d in place
func (r Ring) Translate(d Point) {
	for i := range r {
		r[i] = r[i].Add(d)
	}
}

// Edge returns the endpoints of edge i, which runs from vertex i to vertex (i+1) mod n
func (r Ring) Edge(i int) (Point, Point) {
	return r[i], r[(i+1)%len(r)]
}

// Insert places p before index i, shifting later vertices up
func (r Ring) Insert(i int, p Point) Ring {
	r = append(r, Point{})
	copy(r[i+1:], r[i:])
	r[i] = p
	return r
}

// Bounds is shorthand for BoundingRect(r)
func (r Ring) Bounds() Rect {
	return BoundingRect(r)
}

// Area is shorthand for PolygonArea(r)
func (r Ring) Area() float64 {
	return PolygonArea(r)
}

// Contains is shorthand for PointInPolygon(p, r)
func (r Ring) Contains(p Point) bool {
	return PointInPolygon(p, r)
}

// PolygonArea returns the absolute shoelace area of the ring
func PolygonArea(ring Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	sum := 0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return float64(sum) / 2
}

// BoundingRect returns the rectangle spanned by the ring's extreme
// coordinates. An empty ring yields the zero Rect.
func BoundingRect(ring Ring) Rect {
	if len(ring) == 0 {
		return Rect{}
	}
	minX, minY := ring[0].X, ring[0].Y
	maxX, maxY := minX, minY
	for _, p := range ring[1:] {
		minX = minInt(minX, p.X)
		minY = minInt(minY, p.Y)
		maxX = maxInt(maxX, p.X)
		maxY = maxInt(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PointInPolygon tests containment with the even-odd rule
func PointInPolygon(p Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := float64(p.X), float64(p.Y)
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := float64(ring[i].X), float64(ring[i].Y)
		xj, yj := float64(ring[j].X), float64(ring[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// UnionRect folds Rect.Union over rects. No rects yields the zero Rect.
func UnionRect(rects ...Rect) Rect {
	var out Rect
	for i, r := range rects {
		if i == 0 {
			out = r
			continue
		}
		out = out.Union(r)
	}
	return out
}

// RingsBounds returns the union of the bounding rectangles of all non-empty
// rings
func RingsBounds(rings []Ring) Rect {
	var out Rect
	first := true
	for _, r := range rings {
		if len(r) == 0 {
			continue
		}
		if first {
			out, first = BoundingRect(r), false
			continue
		}
		out = out.Union(BoundingRect(r))
	}
	return out
}
