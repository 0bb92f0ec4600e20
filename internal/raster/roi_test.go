package raster

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/outline"
)

func circleSeq(cx, cy, r float32, n int) *outline.Sequence {
	seq := &outline.Sequence{}
	for i := 0; i < n; i++ {
		a := float32(i) * 2 * math32.Pi / float32(n)
		sin, cos := math32.Sincos(a)
		seq.Samples = append(seq.Samples, outline.Valid(cx+r*cos, cy+r*sin))
	}
	return seq
}

func TestInROI(t *testing.T) {
	if !InROI(circleSeq(20, 20, 5, 64), 40, 40) {
		t.Error("circle inside the buffer not detected")
	}
	if InROI(circleSeq(200, 200, 5, 64), 40, 40) {
		t.Error("circle far outside the buffer detected")
	}
	if InROI(circleSeq(0, 0, 1, 8), 40, 40) {
		t.Error("samples inside the one pixel guard band must not count")
	}
}

func TestEncircles(t *testing.T) {
	if !Encircles(circleSeq(20, 20, 15, 256), 40, 40) {
		t.Error("ring around the center not detected")
	}
	if Encircles(circleSeq(5, 5, 3, 64), 40, 40) {
		t.Error("ring nowhere near the center detected")
	}
}

func denseSquare(x0, y0, x1, y1 float32) []float32 {
	var poly []float32
	edge := func(ax, ay, bx, by float32) {
		steps := int(math32.Max(math32.Abs(bx-ax), math32.Abs(by-ay)))
		for i := 0; i < steps; i++ {
			f := float32(i) / float32(steps)
			poly = append(poly, ax+(bx-ax)*f, ay+(by-ay)*f)
		}
	}
	edge(x0, y0, x1, y0)
	edge(x1, y0, x1, y1)
	edge(x1, y1, x0, y1)
	edge(x0, y1, x0, y0)
	return poly
}

func TestCropToROIClips(t *testing.T) {
	poly := denseSquare(-10, 5, 10, 15)
	n := len(poly)
	if !CropToROI(poly, 0, 19, 0, 20) {
		t.Fatal("polygon crossing the roi reported as enclosing it")
	}
	if len(poly) != n {
		t.Fatalf("vertex count changed from %d to %d", n, len(poly))
	}
	for i := 0; i < len(poly); i += 2 {
		if poly[i] < 0 || poly[i] > 19 || poly[i+1] < 0 || poly[i+1] > 20 {
			t.Fatalf("point %d = (%v,%v) outside the crop window", i/2, poly[i], poly[i+1])
		}
	}
}

func TestCropToROIEnclosing(t *testing.T) {
	poly := denseSquare(-50, -50, 70, 70)
	if CropToROI(poly, 0, 19, 0, 20) {
		t.Error("polygon enclosing the whole roi must report false")
	}
}

func TestDrawBoundaryROIFill(t *testing.T) {
	poly := denseSquare(5, 5, 15, 15)
	const w, h = 25, 25
	buf := make([]float32, w*h)
	DrawBoundaryROI(poly, buf, w, h)
	FillRowsROI(buf, w, 0, w-1, 0, h-1, nil)

	if buf[10*w+10] != 1 {
		t.Error("interior pixel not filled")
	}
	if buf[10*w+20] != 0 {
		t.Error("pixel right of the square is set")
	}
	if buf[2*w+10] != 0 {
		t.Error("pixel above the square is set")
	}
}

func TestFalloffROIClipped(t *testing.T) {
	pts := &outline.Sequence{Samples: []outline.Sample{outline.Valid(-5, 5)}}
	border := &outline.Sequence{Samples: []outline.Sample{outline.Valid(8, 5)}}
	const w, h = 12, 10
	buf := make([]float32, w*h)
	FalloffROI(pts, border, buf, w, h)

	// ramp enters from outside; in-buffer part must be present, bounded
	// and non-increasing toward the border
	last := float32(2)
	seen := false
	for x := 0; x <= 8; x++ {
		v := buf[5*w+x]
		if v < 0 || v > 1 {
			t.Fatalf("opacity %v at x=%d out of range", v, x)
		}
		if v > 0 {
			seen = true
			if v > last+1e-6 {
				t.Errorf("falloff rises at x=%d: %v after %v", x, v, last)
			}
			last = v
		}
	}
	if !seen {
		t.Error("clipped ramp wrote nothing inside the buffer")
	}
}

func TestCollectFalloffSegmentsDedupe(t *testing.T) {
	pts := &outline.Sequence{Samples: []outline.Sample{
		outline.Valid(5, 5), outline.Valid(5, 5), outline.Valid(6, 7),
	}}
	border := &outline.Sequence{Samples: []outline.Sample{
		outline.Valid(9, 5), outline.Valid(9, 5), outline.Valid(9, 9),
	}}
	segs := CollectFalloffSegments(pts, border)
	if len(segs) != 2 {
		t.Errorf("got %d segments, want 2 after deduplication", len(segs))
	}
}
