package masks

import (
	"github.com/gopix/masks/internal/outline"
)

// PointInOutline reports whether (x, y) lies inside the closed polyline
// by +x ray parity. Skip markers in the sequence are walked like the
// rasterizer walks them, so resolved self-intersection runs do not
// disturb the parity.
func PointInOutline(x, y float32, seq *outline.Sequence) bool {
	inside, _ := outlineParity(x, y, seq, 0)
	return inside
}

// PointNearOutline additionally reports whether a ray crossing lies
// within tol of x, which the editor uses to tell "inside the shape" from
// "on the boundary". tol is evaluated along x only.
func PointNearOutline(x, y, tol float32, seq *outline.Sequence) (inside, near bool) {
	return outlineParity(x, y, seq, tol)
}

func outlineParity(x, y float32, seq *outline.Sequence, tol float32) (inside, near bool) {
	if seq == nil {
		return false, false
	}
	samples := seq.Samples
	count := len(samples)
	start := seq.Start
	if count-start <= 2 {
		return false, false
	}
	// a skip marker at the head redirects the whole walk
	if s := samples[start]; s.Skip() {
		r := s.Resume()
		if r < 0 || r >= count {
			return false, false
		}
		start = r
	}

	nb := 0
	for i, next := start, start+1; i < count; {
		s2 := samples[next]
		if s2.Skip() {
			if r := s2.Resume(); r < 0 {
				next = start
			} else {
				next = r
			}
			continue
		}
		y1 := samples[i].Y
		y2 := s2.Y
		if (y <= y2 && y > y1) || (y >= y2 && y < y1) {
			if samples[i].X > x {
				nb++
			}
			if d := samples[i].X - x; tol > 0 && d < tol && d > -tol {
				near = true
			}
		}
		if next == start {
			break
		}
		i = next
		next++
		if next >= count {
			next = start
		}
	}
	return nb&1 == 1, near
}

// outlineCache memoizes the last tessellated boundary for interactive
// queries, keyed on the form generation and the context geometry. A hit
// avoids re-tessellating on every pointer move.
type outlineCache struct {
	gen           uint64
	width, height int
	pts           *outline.Sequence
	valid         bool
}

// queryOutline returns the boundary polyline used by hit testing,
// reusing the cached one when the form and context geometry are
// unchanged. Gradient and group forms have no closed boundary and
// return nil.
func (f *Form) queryOutline(ctx RenderContext) (*outline.Sequence, error) {
	if f.cache.valid && f.cache.gen == f.gen &&
		f.cache.width == ctx.Width && f.cache.height == ctx.Height {
		return f.cache.pts, nil
	}

	pts, err := f.boundaryOutline(ctx)
	if err != nil {
		return nil, err
	}
	f.cache = outlineCache{
		gen:    f.gen,
		width:  ctx.Width,
		height: ctx.Height,
		pts:    pts,
		valid:  true,
	}
	return pts, nil
}

func (f *Form) boundaryOutline(ctx RenderContext) (*outline.Sequence, error) {
	s, err := f.shape()
	if err != nil {
		return nil, err
	}
	if err := f.validate(s); err != nil {
		return nil, nil
	}

	switch s := s.(type) {
	case polygonShape:
		pts, _, err := s.outlines(f, ctx, false)
		return pts, err
	case brushShape:
		pts, _, err := s.outlines(f, ctx, false)
		return pts, err
	case circleShape:
		c, err := circleNode(f)
		if err != nil {
			return nil, err
		}
		circ, err := circleOutline(ctx, c.Center[0], c.Center[1], c.Radius)
		if err != nil {
			return nil, err
		}
		return flatSequence(circ, 1), nil
	case ellipseShape:
		e, err := ellipseNode(f)
		if err != nil {
			return nil, err
		}
		out, err := ellipseOutline(ctx, e, e.Radius[0], e.Radius[1])
		if err != nil {
			return nil, err
		}
		return flatSequence(out, 1), nil
	}
	return nil, nil
}

// flatSequence wraps a flat [x,y,...] polyline as a sample sequence with
// the first start points treated as metadata.
func flatSequence(pts []float32, start int) *outline.Sequence {
	seq := &outline.Sequence{
		Samples: make([]outline.Sample, len(pts)/2),
		Start:   start,
	}
	for i := range seq.Samples {
		seq.Samples[i] = outline.Valid(pts[i*2], pts[i*2+1])
	}
	return seq
}

// PointInShape reports whether the working-space point (x, y) lies
// inside the form's boundary. Kinds without a closed boundary report
// false.
func (f *Form) PointInShape(ctx RenderContext, x, y float32) (bool, error) {
	pts, err := f.queryOutline(ctx)
	if err != nil {
		return false, err
	}
	return PointInOutline(x, y, pts), nil
}

// PointNearShape reports containment plus whether (x, y) lies within tol
// of the boundary along x.
func (f *Form) PointNearShape(ctx RenderContext, x, y, tol float32) (inside, near bool, err error) {
	pts, err := f.queryOutline(ctx)
	if err != nil {
		return false, false, err
	}
	inside, near = PointNearOutline(x, y, tol, pts)
	return inside, near, nil
}
