package quadtree

import "testing"

func TestQuadMapIndexing(t *testing.T) {
	m := NewQuadMap(0, 1, 2, 3)
	if got := m.Get(NW); got != 0 {
		t.Errorf("NW = %d, want 0", got)
	}
	if got := m.Get(NE); got != 1 {
		t.Errorf("NE = %d, want 1", got)
	}
	if got := m.Get(SW); got != 2 {
		t.Errorf("SW = %d, want 2", got)
	}
	if got := m.Get(SE); got != 3 {
		t.Errorf("SE = %d, want 3", got)
	}
}

func TestQuadMapSet(t *testing.T) {
	m := NewQuadMap(0, 1, 2, 3)
	m.Set(NW, 5)
	if got := m.Get(NW); got != 5 {
		t.Errorf("NW = %d, want 5", got)
	}
}

func TestQuadrantFromSides(t *testing.T) {
	cases := []struct {
		right, bottom bool
		want          Quadrant
	}{
		{false, false, NW},
		{true, false, NE},
		{false, true, SW},
		{true, true, SE},
	}
	for _, c := range cases {
		if got := QuadrantFromSides(c.right, c.bottom); got != c.want {
			t.Errorf("FromSides(%v, %v) = %v, want %v", c.right, c.bottom, got, c.want)
		}
	}
}
