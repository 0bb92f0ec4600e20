package outline

import (
	"errors"
	"testing"

	"github.com/gopix/masks/internal/curve"
)

func strokeNodes(radius float32, corners ...[2]float32) []BrushPoint {
	pts := make([]BrushPoint, len(corners))
	for i, c := range corners {
		pts[i] = BrushPoint{
			PathNode: curve.PathNode{
				Corner: c,
				Ctrl1:  [2]float32{curve.Unset, curve.Unset},
				Ctrl2:  [2]float32{curve.Unset, curve.Unset},
				Border: [2]float32{radius, radius},
				Smooth: true,
			},
			Hardness: 0.8,
			Density:  1,
		}
	}
	return pts
}

func TestCyclicCursor(t *testing.T) {
	want := []int{0, 1, 2, 2, 1, 0, 0, 1}
	for n, w := range want {
		if got := cyclicCursor(n, 3); got != w {
			t.Errorf("cyclicCursor(%d, 3) = %d, want %d", n, got, w)
		}
	}
}

func TestBrushLayout(t *testing.T) {
	nodes := strokeNodes(8, [2]float32{20, 50}, [2]float32{50, 30}, [2]float32{80, 50})
	pts, border, err := Brush(nodes, 1, nil, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if pts.Start != len(nodes)*3 {
		t.Errorf("pts.Start = %d, want %d", pts.Start, len(nodes)*3)
	}
	if border == nil {
		t.Fatal("no border sequence")
	}
	if pts.Len() <= pts.Start+4 {
		t.Fatalf("only %d samples past the header", pts.Len()-pts.Start)
	}
	if len(pts.Payload) != 2*pts.Len() {
		t.Errorf("payload holds %d floats for %d samples, want an aligned pair per sample",
			len(pts.Payload), pts.Len())
	}
}

func TestBrushTraversesBothWays(t *testing.T) {
	// up and down the centerline: the stroke endpoints appear twice
	nodes := strokeNodes(5, [2]float32{20, 50}, [2]float32{80, 50})
	pts, _, err := Brush(nodes, 1, nil, true, false)
	if err != nil {
		t.Fatal(err)
	}
	hits := 0
	for _, s := range pts.Samples[pts.Start:] {
		if s.Skip() {
			continue
		}
		if abs32(s.X-20) < 3 && abs32(s.Y-50) < 3 {
			hits++
		}
	}
	if hits < 2 {
		t.Errorf("start endpoint visited %d times, want at least 2", hits)
	}
}

func TestBrushSingleNode(t *testing.T) {
	pts, border, err := Brush(strokeNodes(5, [2]float32{50, 50}), 1, nil, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if pts.Len() != 0 || border != nil {
		t.Error("a single node cannot form a stroke, want empty sequences")
	}
}

func TestBrushTransformError(t *testing.T) {
	fail := errors.New("mapper down")
	tr := func(p []float32) error { return fail }
	_, _, err := Brush(strokeNodes(5, [2]float32{20, 50}, [2]float32{80, 50}), 1, tr, true, false)
	if !errors.Is(err, fail) {
		t.Fatalf("err = %v, want the mapper failure", err)
	}
}
