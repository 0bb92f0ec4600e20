package masks

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"
)

// PreviewOutline returns the flat working-space polyline the editor
// overlay draws for the form: the boundary for closed shapes, the
// central iso-line for gradients. Group forms have no outline of their
// own and return nil.
func (f *Form) PreviewOutline(ctx RenderContext) ([]float32, error) {
	s, err := f.shape()
	if err != nil {
		return nil, err
	}
	if err := f.validate(s); err != nil {
		return nil, nil
	}

	switch s.(type) {
	case gradientShape:
		g, err := gradientNode(f)
		if err != nil {
			return nil, err
		}
		line, err := gradientPolyline(ctx, g, 0, 0)
		if err != nil {
			return nil, err
		}
		// drop the anchor and pivot metadata points
		if len(line) <= 6 {
			return nil, nil
		}
		return line[6:], nil
	case groupShape:
		return nil, nil
	}

	pts, err := f.queryOutline(ctx)
	if err != nil || pts == nil {
		return nil, err
	}
	flat := make([]float32, 0, 2*(len(pts.Samples)-pts.Start))
	for _, sm := range pts.Samples[pts.Start:] {
		if sm.Skip() {
			continue
		}
		flat = append(flat, sm.X, sm.Y)
	}
	return flat, nil
}

// DrawOutline stamps a flat polyline into dst as an antialiased stroke,
// one quad per segment through the vector rasterizer. closed joins the
// last point back to the first.
func DrawOutline(dst draw.Image, pts []float32, width float32, c color.Color, closed bool) {
	if len(pts) < 4 || width <= 0 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := width / 2

	count := len(pts) / 2
	segs := count - 1
	if closed {
		segs = count
	}
	for i := 0; i < segs; i++ {
		j := (i + 1) % count
		x0, y0 := pts[i*2], pts[i*2+1]
		x1, y1 := pts[j*2], pts[j*2+1]
		dx := x1 - x0
		dy := y1 - y0
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx := dy / l * half
		ny := -dx / l * half
		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
	}
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}
