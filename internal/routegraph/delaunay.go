package routegraph

import "math"

// delaunayPoint is a 2D point tagged with the caller's node id, so the
// triangulation can report edges in terms of the caller's own identifiers.
type delaunayPoint struct {
	X, Y float64
	ID   NodeID
}

type delaunayEdge struct {
	A, B NodeID
}

type triangle struct {
	a, b, c int // indices into the working point slice (including super-triangle points)
}

// delaunayTriangulate computes a Bowyer-Watson triangulation over the
// given points and returns its edges, deduplicated and undirected, each
// reported once as (min(a,b), max(a,b)) by node id ordering from the
// input slice order (stable, not by id value, so callers that care about
// determinism should sort their input first).
//
// A pair of points yields its one connecting edge. A single point, or
// three or more collinear points, yield no triangles and therefore no
// edges; callers fall back to whatever coverage the rest of base graph
// construction already provides.
func delaunayTriangulate(points []delaunayPoint) []delaunayEdge {
	n := len(points)
	if n == 2 {
		return []delaunayEdge{{A: points[0].ID, B: points[1].ID}}
	}
	if n < 2 {
		return nil
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	dx, dy := maxX-minX, maxY-minY
	deltaMax := math.Max(dx, dy)
	if deltaMax == 0 {
		deltaMax = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	// working points: the real input followed by three super-triangle
	// vertices large enough to enclose every input point.
	pts := make([]struct{ x, y float64 }, 0, n+3)
	for _, p := range points {
		pts = append(pts, struct{ x, y float64 }{p.X, p.Y})
	}
	superA := len(pts)
	pts = append(pts, struct{ x, y float64 }{midX - 20*deltaMax, midY - deltaMax})
	superB := len(pts)
	pts = append(pts, struct{ x, y float64 }{midX, midY + 20*deltaMax})
	superC := len(pts)
	pts = append(pts, struct{ x, y float64 }{midX + 20*deltaMax, midY - deltaMax})

	triangles := []triangle{{superA, superB, superC}}

	for i := 0; i < n; i++ {
		px, py := pts[i].x, pts[i].y

		var bad []int
		for ti, t := range triangles {
			if inCircumcircle(pts, t, px, py) {
				bad = append(bad, ti)
			}
		}

		polygon := make(map[[2]int]int)
		for _, ti := range bad {
			t := triangles[ti]
			for _, e := range [][2]int{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
				key := e
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				polygon[key]++
			}
		}

		kept := triangles[:0:0]
		badSet := make(map[int]bool, len(bad))
		for _, ti := range bad {
			badSet[ti] = true
		}
		for ti, t := range triangles {
			if !badSet[ti] {
				kept = append(kept, t)
			}
		}
		triangles = kept

		for edge, count := range polygon {
			if count == 1 {
				triangles = append(triangles, triangle{edge[0], edge[1], i})
			}
		}
	}

	seen := make(map[[2]int]bool)
	var edges []delaunayEdge
	for _, t := range triangles {
		if t.a >= n || t.b >= n || t.c >= n {
			continue // touches a super-triangle vertex
		}
		for _, e := range [][2]int{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
			key := e
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, delaunayEdge{A: points[key[0]].ID, B: points[key[1]].ID})
		}
	}
	return edges
}

func inCircumcircle(pts []struct{ x, y float64 }, t triangle, px, py float64) bool {
	ax, ay := pts[t.a].x, pts[t.a].y
	bx, by := pts[t.b].x, pts[t.b].y
	cx, cy := pts[t.c].x, pts[t.c].y

	ax -= px
	ay -= py
	bx -= px
	by -= py
	cx -= px
	cy -= py

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// orientation of a,b,c determines the sign convention for "inside"
	area2 := (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
	if area2 < 0 {
		return det < 0
	}
	return det > 0
}
