package quadtree

// Rect is an axis-aligned region in tile-grid coordinates, used to bound
// visit traversals to the portion of the tree that can intersect it.
type Rect struct {
	MinX, MinY, MaxX, MaxY uint64
}

// RectXYWH builds a Rect from an origin and a width/height.
func RectXYWH(x, y, w, h uint64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// RectCorners builds a Rect from its two opposite corners.
func RectCorners(minX, minY, maxX, maxY uint64) Rect {
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}
