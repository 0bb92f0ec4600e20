package outline

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/curve"
)

func squareNodes(x0, y0, x1, y1, radius float32) []curve.PathNode {
	corners := [][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	nodes := make([]curve.PathNode, len(corners))
	for i, c := range corners {
		nodes[i] = curve.PathNode{
			Corner: c,
			Ctrl1:  [2]float32{curve.Unset, curve.Unset},
			Ctrl2:  [2]float32{curve.Unset, curve.Unset},
			Border: [2]float32{radius, radius},
			Smooth: true,
		}
	}
	return nodes
}

func TestPolygonLayout(t *testing.T) {
	nodes := squareNodes(20, 20, 80, 80, 10)
	pts, border, err := Polygon(nodes, 1, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if pts.Start != len(nodes)*3 {
		t.Errorf("pts.Start = %d, want %d", pts.Start, len(nodes)*3)
	}
	if border.Start != len(nodes)*3 {
		t.Errorf("border.Start = %d, want %d", border.Start, len(nodes)*3)
	}
	if len(pts.Runs) != len(nodes) {
		t.Fatalf("got %d runs, want %d", len(pts.Runs), len(nodes))
	}
	for i, r := range pts.Runs {
		if r.End < r.First {
			t.Errorf("run %d = %+v, inverted", i, r)
		}
	}
	if pts.Len() <= pts.Start+4 {
		t.Errorf("only %d samples past the header, square should tessellate densely", pts.Len()-pts.Start)
	}
}

func TestPolygonClosure(t *testing.T) {
	nodes := squareNodes(20, 20, 80, 80, 0)
	pts, _, err := Polygon(nodes, 1, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	first := pts.Samples[pts.Start]
	last := pts.Samples[len(pts.Samples)-1]
	if first.Skip() || last.Skip() {
		t.Fatal("boundary samples must all be valid")
	}
	// the first sample sits one accepted subdivision past the corner the
	// last sample lands on exactly
	d := math32.Hypot(first.X-last.X, first.Y-last.Y)
	if d > 3 {
		t.Errorf("boundary not closed: first=(%v,%v) last=(%v,%v)", first.X, first.Y, last.X, last.Y)
	}
}

func TestPolygonBorderOutside(t *testing.T) {
	nodes := squareNodes(30, 30, 70, 70, 10)
	pts, border, err := Polygon(nodes, 1, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	pxmin, pymin, pxmax, pymax, ok := pts.Bounds()
	if !ok {
		t.Fatal("no boundary samples")
	}
	bxmin, bymin, bxmax, bymax, ok := border.Bounds()
	if !ok {
		t.Fatal("no border samples")
	}
	if bxmin > pxmin-5 || bymin > pymin-5 || bxmax < pxmax+5 || bymax < pymax+5 {
		t.Errorf("border (%v,%v)-(%v,%v) does not clear the boundary (%v,%v)-(%v,%v) by the feather width",
			bxmin, bymin, bxmax, bymax, pxmin, pymin, pxmax, pymax)
	}
}

func TestPolygonTransformError(t *testing.T) {
	fail := errors.New("mapper down")
	tr := func(pts []float32) error { return fail }
	pts, border, err := Polygon(squareNodes(20, 20, 80, 80, 5), 1, tr, true)
	if !errors.Is(err, fail) {
		t.Fatalf("err = %v, want the mapper failure", err)
	}
	if pts != nil || border != nil {
		t.Error("partial sequences returned alongside a transform failure")
	}
}

func TestPolygonTransformApplied(t *testing.T) {
	shift := func(pts []float32) error {
		for i := 0; i < len(pts); i += 2 {
			pts[i] += 100
		}
		return nil
	}
	pts, _, err := Polygon(squareNodes(20, 20, 80, 80, 0), 1, shift, false)
	if err != nil {
		t.Fatal(err)
	}
	xmin, _, _, _, ok := pts.Bounds()
	if !ok || xmin < 100 {
		t.Errorf("xmin = %v, want >= 100 after the shift", xmin)
	}
}
