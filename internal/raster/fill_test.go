package raster

import (
	"testing"

	"github.com/gopix/masks/internal/outline"
)

// squareSeq traces the perimeter of an axis-aligned square in 1px steps.
func squareSeq(x0, y0, x1, y1 int) *outline.Sequence {
	seq := &outline.Sequence{}
	emit := func(x, y int) {
		seq.Samples = append(seq.Samples, outline.Valid(float32(x), float32(y)))
	}
	for x := x0; x < x1; x++ {
		emit(x, y0)
	}
	for y := y0; y < y1; y++ {
		emit(x1, y)
	}
	for x := x1; x > x0; x-- {
		emit(x, y1)
	}
	for y := y1; y > y0; y-- {
		emit(x0, y)
	}
	return seq
}

func TestBoundingBoxMargin(t *testing.T) {
	seq := squareSeq(10, 10, 20, 20)
	w, h, px, py := BoundingBox(seq, nil)
	if px != 8 || py != 8 {
		t.Errorf("pos = (%d,%d), want (8,8)", px, py)
	}
	if w != 14 || h != 14 {
		t.Errorf("size = %dx%d, want 14x14", w, h)
	}
}

func TestBoundsSkipMarkers(t *testing.T) {
	seq := &outline.Sequence{
		Samples: []outline.Sample{
			outline.Valid(5, 5),
			outline.SkipTo(3),
			outline.Valid(1000, 1000), // skipped
			outline.Valid(10, 8),
		},
	}
	xmin, xmax, ymin, ymax := Bounds(seq, nil)
	if xmin != 5 || xmax != 10 || ymin != 5 || ymax != 8 {
		t.Errorf("bounds = (%v,%v)-(%v,%v), want (5,5)-(10,8)", xmin, ymin, xmax, ymax)
	}
}

func TestDrawBoundaryFill(t *testing.T) {
	seq := squareSeq(5, 5, 15, 15)
	const w, h = 25, 25
	buf := make([]float32, w*h)
	DrawBoundary(seq, buf, w, 0, 0)
	FillRows(buf, w, h, nil)

	if buf[10*w+10] != 1 {
		t.Error("interior pixel not filled")
	}
	for x := 0; x < w; x++ {
		if buf[2*w+x] != 0 {
			t.Errorf("pixel (%d,2) above the square is set", x)
		}
	}
	if buf[10*w+20] != 0 {
		t.Error("pixel right of the square is set, parity leaked")
	}
}

func TestFalloffMonotonic(t *testing.T) {
	pts := &outline.Sequence{Samples: []outline.Sample{outline.Valid(10, 10)}}
	border := &outline.Sequence{Samples: []outline.Sample{outline.Valid(22, 10)}}
	const w, h = 30, 20
	buf := make([]float32, w*h)
	Falloff(pts, border, buf, w, h, 0, 0)

	if buf[10*w+10] < 0.9 {
		t.Errorf("boundary end = %v, want close to 1", buf[10*w+10])
	}
	last := float32(2)
	for x := 10; x < 22; x++ {
		v := buf[10*w+x]
		if v > last+1e-6 {
			t.Errorf("falloff rises at x=%d: %v after %v", x, v, last)
		}
		if v > 0 {
			last = v
		}
	}
}

func TestFalloffBorderSkipFreezes(t *testing.T) {
	pts := &outline.Sequence{Samples: []outline.Sample{
		outline.Valid(5, 5),
		outline.Valid(6, 5),
	}}
	border := &outline.Sequence{Samples: []outline.Sample{
		outline.Valid(15, 5),
		outline.WrapSkip(), // resolves back to the last valid sample
	}}
	const w, h = 20, 10
	buf := make([]float32, w*h)
	Falloff(pts, border, buf, w, h, 0, 0)
	if buf[5*w+5] < 0.9 {
		t.Errorf("first ramp missing, boundary value = %v", buf[5*w+5])
	}
}
