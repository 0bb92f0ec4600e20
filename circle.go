package masks

import (
	"fmt"

	"github.com/chewxy/math32"
)

// circleShape renders circles without the tessellation pipeline: opacity
// is a closed-form field of the squared distance to the center, so every
// output pixel can be evaluated directly after mapping it back to shape
// reference space.
type circleShape struct{}

func (circleShape) minNodes() int { return 1 }
func (circleShape) nodeSize() int { return 16 }

func circleNode(f *Form) (CircleNode, error) {
	n, ok := f.nodes[0].(CircleNode)
	if !ok {
		return CircleNode{}, fmt.Errorf("%w: circle form without circle node", ErrMalformedShape)
	}
	return n, nil
}

// circleOutline builds the flat working-space outline of a circle: the
// mapped center first, then the circumference sampled at roughly one
// point per pixel of arc length. The dense sampling matters because the
// distortion mapper can bend the circle arbitrarily.
func circleOutline(ctx RenderContext, cx, cy, radius float32) ([]float32, error) {
	r := radius * float32(min(ctx.Width, ctx.Height))
	l := int(2 * math32.Pi * r)
	if l < 6 {
		l = 6
	}
	pts := make([]float32, (l+1)*2)
	centerX := cx * float32(ctx.Width)
	centerY := cy * float32(ctx.Height)
	pts[0] = centerX
	pts[1] = centerY
	for i := 1; i < l+1; i++ {
		alpha := float32(i-1) * 2 * math32.Pi / float32(l)
		sin, cos := math32.Sincos(alpha)
		pts[i*2] = centerX + r*cos
		pts[i*2+1] = centerY + r*sin
	}
	if err := ctx.transform(pts); err != nil {
		return nil, err
	}
	return pts, nil
}

// flatBounds returns the bounding box of a flat point slice, ignoring
// non-finite values a distortion mapper may produce.
func flatBounds(pts []float32) (xmin, xmax, ymin, ymax float32, ok bool) {
	xmin, ymin = math32.MaxFloat32, math32.MaxFloat32
	xmax, ymax = -math32.MaxFloat32, -math32.MaxFloat32
	for i := 0; i < len(pts); i += 2 {
		x, y := pts[i], pts[i+1]
		if math32.IsNaN(x) || math32.IsInf(x, 0) || math32.IsNaN(y) || math32.IsInf(y, 0) {
			continue
		}
		xmin = math32.Min(xmin, x)
		xmax = math32.Max(xmax, x)
		ymin = math32.Min(ymin, y)
		ymax = math32.Max(ymax, y)
		ok = true
	}
	return xmin, xmax, ymin, ymax, ok
}

func (s circleShape) area(f *Form, ctx RenderContext) (Area, error) {
	c, err := circleNode(f)
	if err != nil {
		return Area{}, err
	}
	pts, err := circleOutline(ctx, c.Center[0], c.Center[1], c.Radius+c.Border)
	if err != nil {
		return Area{}, err
	}
	// pts[0] is the center, not part of the hull
	xmin, xmax, ymin, ymax, ok := flatBounds(pts[2:])
	if !ok {
		return Area{}, nil
	}
	return Area{
		X:      int(xmin),
		Y:      int(ymin),
		Width:  int(xmax - xmin),
		Height: int(ymax - ymin),
	}, nil
}

// circleField is the precomputed falloff: opacity is the square of
// clip((total2-l2)/border2) where l2 is the squared reference-space
// distance to the center. Quadratic in the distance ratio, so the
// feather eases smoothly into both the solid core and the transparent
// outside.
type circleField struct {
	centerX, centerY float32
	total2, border2  float32
}

func newCircleField(c CircleNode, ctx RenderContext) circleField {
	minDim := float32(min(ctx.Width, ctx.Height))
	radius := c.Radius * minDim
	total := (c.Radius + c.Border) * minDim
	return circleField{
		centerX: c.Center[0] * float32(ctx.Width),
		centerY: c.Center[1] * float32(ctx.Height),
		total2:  total * total,
		border2: total*total - radius*radius,
	}
}

func (cf circleField) at(x, y float32) float32 {
	dx := x - cf.centerX
	dy := y - cf.centerY
	l2 := dx*dx + dy*dy
	ratio := (cf.total2 - l2) / cf.border2
	if !(ratio > 0) {
		return 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * ratio
}

func (s circleShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	a, err := s.area(f, ctx)
	if err != nil {
		return nil, err
	}
	if a.Empty() {
		return nil, nil
	}
	c, err := circleNode(f)
	if err != nil {
		return nil, err
	}
	return fieldMask(ctx, a, newCircleField(c, ctx).at)
}

func (s circleShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	c, err := circleNode(f)
	if err != nil {
		return err
	}
	// the outer circle bounds every nonzero pixel, so its transformed
	// hull decides which part of the roi needs any work at all
	circ, err := circleOutline(ctx, c.Center[0], c.Center[1], c.Radius+c.Border)
	if err != nil {
		return err
	}
	return fieldMaskROI(ctx, roi, buf, circ[2:], newCircleField(c, ctx).at)
}
