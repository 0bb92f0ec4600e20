package raster

import (
	"testing"

	"github.com/gopix/masks/internal/outline"
)

func TestScaleShift(t *testing.T) {
	seq := &outline.Sequence{
		Samples: []outline.Sample{
			outline.Valid(0, 0), // header, untouched
			outline.Valid(40, 60),
			outline.SkipTo(3),
			outline.Valid(80, 100),
		},
		Start: 1,
	}
	ScaleShift(seq, 0.5, 10, 20)

	if s := seq.Samples[0]; s.X != 0 || s.Y != 0 {
		t.Errorf("header sample moved to (%v,%v)", s.X, s.Y)
	}
	if s := seq.Samples[1]; s.X != 10 || s.Y != 10 {
		t.Errorf("sample 1 = (%v,%v), want (10,10)", s.X, s.Y)
	}
	if s := seq.Samples[2]; !s.Skip() || s.Resume() != 3 {
		t.Error("skip marker corrupted by scaling")
	}
	if s := seq.Samples[3]; s.X != 30 || s.Y != 30 {
		t.Errorf("sample 3 = (%v,%v), want (30,30)", s.X, s.Y)
	}
}

func strokeSeq(samples []outline.Sample, hardness, density float32) *outline.Sequence {
	payload := make([]float32, 2*len(samples))
	for i := range samples {
		payload[2*i] = hardness
		payload[2*i+1] = density
	}
	return &outline.Sequence{Samples: samples, Payload: payload}
}

func TestFalloffStrokeRamp(t *testing.T) {
	pts := strokeSeq([]outline.Sample{outline.Valid(5, 10)}, 0.5, 1)
	border := &outline.Sequence{Samples: []outline.Sample{outline.Valid(25, 10)}}
	const w, h = 30, 20
	buf := make([]float32, w*h)
	FalloffStroke(pts, border, buf, w, h, 0, 0)

	if got := buf[10*w+5]; got != 1 {
		t.Errorf("centerline opacity = %v, want the full density", got)
	}
	// solid up to the hardness fraction, then a ramp to zero
	if got := buf[10*w+13]; got != 1 {
		t.Errorf("opacity inside the solid core = %v, want 1", got)
	}
	if got := buf[10*w+22]; got <= 0 || got >= 1 {
		t.Errorf("opacity in the soft tail = %v, want strictly between 0 and 1", got)
	}
	last := float32(2)
	for x := 5; x < 25; x++ {
		v := buf[10*w+x]
		if v > last+1e-6 {
			t.Errorf("opacity rises at x=%d: %v after %v", x, v, last)
		}
		last = v
	}
}

func TestFalloffStrokeDensity(t *testing.T) {
	pts := strokeSeq([]outline.Sample{outline.Valid(5, 5)}, 0.8, 0.4)
	border := &outline.Sequence{Samples: []outline.Sample{outline.Valid(15, 5)}}
	const w, h = 20, 10
	buf := make([]float32, w*h)
	FalloffStroke(pts, border, buf, w, h, 0, 0)
	if got := buf[5*w+5]; got != 0.4 {
		t.Errorf("centerline opacity = %v, want the per-sample density", got)
	}
}

func TestFalloffStrokeBorderSkip(t *testing.T) {
	pts := strokeSeq([]outline.Sample{
		outline.Valid(5, 5),
		outline.Valid(6, 5),
	}, 0.5, 1)
	border := &outline.Sequence{Samples: []outline.Sample{
		outline.Valid(15, 5),
		outline.WrapSkip(),
	}}
	const w, h = 20, 10
	buf := make([]float32, w*h)
	FalloffStroke(pts, border, buf, w, h, 0, 0)
	if got := buf[5*w+5]; got != 1 {
		t.Errorf("first ramp missing, centerline opacity = %v", got)
	}
}

func TestFalloffStrokeROIClipped(t *testing.T) {
	pts := strokeSeq([]outline.Sample{outline.Valid(-10, 5)}, 0.5, 1)
	border := &outline.Sequence{Samples: []outline.Sample{outline.Valid(12, 5)}}
	const w, h = 16, 10
	buf := make([]float32, w*h)
	FalloffStrokeROI(pts, border, buf, w, h)

	seen := false
	for x := 0; x < w; x++ {
		v := buf[5*w+x]
		if v < 0 || v > 1 {
			t.Fatalf("opacity %v at x=%d out of range", v, x)
		}
		if v > 0 {
			seen = true
		}
	}
	if !seen {
		t.Error("clipped stroke wrote nothing inside the buffer")
	}

	far := strokeSeq([]outline.Sample{outline.Valid(100, 100)}, 0.5, 1)
	farBorder := &outline.Sequence{Samples: []outline.Sample{outline.Valid(120, 100)}}
	clean := make([]float32, w*h)
	FalloffStrokeROI(far, farBorder, clean, w, h)
	for i, v := range clean {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, segment outside the roi must be rejected", i, v)
		}
	}
}
