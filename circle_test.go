package masks

import (
	"errors"
	"testing"
)

// countTransformer is an identity mapper that records how often each
// direction is invoked.
type countTransformer struct {
	fwd, back int
}

func (c *countTransformer) Transform(pts []float32) error {
	c.fwd++
	return nil
}

func (c *countTransformer) Backtransform(pts []float32) error {
	c.back++
	return nil
}

func circleForm(cx, cy, radius, border float32) *Form {
	f := NewForm(KindCircle)
	if err := f.AppendNode(CircleNode{Center: [2]float32{cx, cy}, Radius: radius, Border: border}); err != nil {
		panic(err)
	}
	return f
}

func TestCircleArea(t *testing.T) {
	ctx := RenderContext{Width: 100, Height: 100}
	f := circleForm(0.5, 0.5, 0.1, 0.05)
	a, err := f.Area(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cx := a.X + a.Width/2
	cy := a.Y + a.Height/2
	if cx < 48 || cx > 52 || cy < 48 || cy > 52 {
		t.Errorf("area center = (%d,%d), want near (50,50)", cx, cy)
	}
	if a.Width/2 < 13 || a.Width/2 > 16 {
		t.Errorf("half extent = %d, want near the 15px feathered radius", a.Width/2)
	}
}

func TestCircleMaskValues(t *testing.T) {
	ctx := RenderContext{Width: 100, Height: 100}
	f := circleForm(0.5, 0.5, 0.1, 0.05)
	m, err := f.Mask(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("no mask")
	}
	at := func(wx, wy int) float32 { return m.At(wx-m.PosX(), wy-m.PosY()) }

	if got := at(50, 50); got != 1 {
		t.Errorf("center opacity = %v, want 1", got)
	}
	if got := at(35, 50); got > 1e-4 {
		t.Errorf("opacity at the feather edge = %v, want 0", got)
	}
	if got := at(62, 50); got <= 0 || got >= 1 {
		t.Errorf("opacity inside the feather = %v, want strictly between 0 and 1", got)
	}

	// radial monotonicity along the +x ray from the center
	last := float32(2)
	for x := 50; x <= 66; x++ {
		v := at(x, 50)
		if v > last+1e-6 {
			t.Errorf("opacity rises at x=%d: %v after %v", x, v, last)
		}
		last = v
	}
}

func TestCircleROIMatchesFull(t *testing.T) {
	ctx := RenderContext{Width: 800, Height: 800}
	f := circleForm(0.5, 0.5, 0.2, 0.2)
	m, err := f.Mask(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("no mask")
	}

	// quarter-scale roi over the whole frame; every roi pixel maps to an
	// exact full-resolution working-space position
	roi := ROI{X: 0, Y: 0, Width: 200, Height: 200, Scale: 0.25}
	buf := make([]float32, roi.Width*roi.Height)
	if err := f.MaskROI(ctx, roi, buf); err != nil {
		t.Fatal(err)
	}

	worst := float32(0)
	for y := 0; y < roi.Height; y++ {
		for x := 0; x < roi.Width; x++ {
			d := buf[y*roi.Width+x] - m.At(4*x-m.PosX(), 4*y-m.PosY())
			if d < 0 {
				d = -d
			}
			if d > worst {
				worst = d
			}
		}
	}
	if worst > 1e-3 {
		t.Errorf("worst roi/full deviation = %v, want <= 1e-3", worst)
	}
}

func TestCircleROIOutside(t *testing.T) {
	ctx := RenderContext{Width: 100, Height: 100}
	tr := &countTransformer{}
	ctx.Transform = tr
	f := circleForm(0.5, 0.5, 0.1, 0.05)

	roi := ROI{X: 2000, Y: 2000, Width: 50, Height: 50, Scale: 1}
	buf := make([]float32, roi.Width*roi.Height)
	for i := range buf {
		buf[i] = 0.7 // stale content must be cleared
	}
	if err := f.MaskROI(ctx, roi, buf); err != nil {
		t.Fatal(err)
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want a zeroed buffer", i, v)
		}
	}
	if tr.back != 0 {
		t.Errorf("backtransform ran %d times for a roi the shape cannot reach", tr.back)
	}
}

func TestCircleMalformed(t *testing.T) {
	ctx := RenderContext{Width: 100, Height: 100}
	f := NewForm(KindCircle) // no nodes
	m, err := f.Mask(ctx)
	if err != nil || m != nil {
		t.Errorf("Mask = (%v, %v), want (nil, nil) for a nodeless form", m, err)
	}
	a, err := f.Area(ctx)
	if err != nil || !a.Empty() {
		t.Errorf("Area = (%+v, %v), want empty and no error", a, err)
	}
}

func TestUnknownKind(t *testing.T) {
	f := NewForm(0)
	if _, err := f.Mask(RenderContext{Width: 10, Height: 10}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}
