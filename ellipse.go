package masks

import (
	"fmt"

	"github.com/chewxy/math32"
)

// ellipseShape renders ellipses with the same closed-form field approach
// as circles. The falloff runs between the inner ellipse and the outer
// feather ellipse along each ray from the center, so the feather width
// follows the local curvature instead of being a constant band.
type ellipseShape struct{}

func (ellipseShape) minNodes() int { return 1 }
func (ellipseShape) nodeSize() int { return 28 }

func ellipseNode(f *Form) (EllipseNode, error) {
	n, ok := f.nodes[0].(EllipseNode)
	if !ok {
		return EllipseNode{}, fmt.Errorf("%w: ellipse form without ellipse node", ErrMalformedShape)
	}
	return n, nil
}

// outerRadii returns the feather ellipse axes in normalized units.
// Equidistant borders add a constant band, proportional borders scale
// both axes so the feather keeps the aspect ratio.
func (e EllipseNode) outerRadii() (a, b float32) {
	if e.Flags == EllipseProportional {
		return e.Radius[0] * (1 + e.Border), e.Radius[1] * (1 + e.Border)
	}
	return e.Radius[0] + e.Border, e.Radius[1] + e.Border
}

// ellipseOutline builds the flat working-space outline of a rotated
// ellipse, the mapped center first.
func ellipseOutline(ctx RenderContext, e EllipseNode, a, b float32) ([]float32, error) {
	minDim := float32(min(ctx.Width, ctx.Height))
	ap := a * minDim
	bp := b * minDim
	l := int(2 * math32.Pi * math32.Max(ap, bp))
	if l < 6 {
		l = 6
	}
	sinT, cosT := math32.Sincos(e.Rotation * math32.Pi / 180)
	centerX := e.Center[0] * float32(ctx.Width)
	centerY := e.Center[1] * float32(ctx.Height)

	pts := make([]float32, (l+1)*2)
	pts[0] = centerX
	pts[1] = centerY
	for i := 1; i < l+1; i++ {
		alpha := float32(i-1) * 2 * math32.Pi / float32(l)
		sinA, cosA := math32.Sincos(alpha)
		x := ap * cosA
		y := bp * sinA
		pts[i*2] = centerX + x*cosT - y*sinT
		pts[i*2+1] = centerY + x*sinT + y*cosT
	}
	if err := ctx.transform(pts); err != nil {
		return nil, err
	}
	return pts, nil
}

func (s ellipseShape) area(f *Form, ctx RenderContext) (Area, error) {
	e, err := ellipseNode(f)
	if err != nil {
		return Area{}, err
	}
	oa, ob := e.outerRadii()
	pts, err := ellipseOutline(ctx, e, oa, ob)
	if err != nil {
		return Area{}, err
	}
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

// ellipseField evaluates the falloff through the two normalized
// quadratic forms s = (x'/a)^2 + (y'/b)^2 of the inner and outer
// ellipse. Along any ray from the center the opacity ratio reduces to
// (1-sOut)*sIn/(sIn-sOut), which is 1 on the inner boundary and 0 on
// the outer one; the ray length cancels out.
type ellipseField struct {
	centerX, centerY float32
	sinT, cosT       float32
	ia2, ib2         float32 // 1/a^2, 1/b^2 of the inner ellipse, pixels
	oa2, ob2         float32 // same for the outer ellipse
	degenerate       bool
}

func newEllipseField(e EllipseNode, ctx RenderContext) ellipseField {
	minDim := float32(min(ctx.Width, ctx.Height))
	oa, ob := e.outerRadii()
	ia := e.Radius[0] * minDim
	ib := e.Radius[1] * minDim
	oaP := oa * minDim
	obP := ob * minDim
	sinT, cosT := math32.Sincos(e.Rotation * math32.Pi / 180)
	cf := ellipseField{
		centerX: e.Center[0] * float32(ctx.Width),
		centerY: e.Center[1] * float32(ctx.Height),
		sinT:    sinT,
		cosT:    cosT,
	}
	if ia <= 0 || ib <= 0 || oaP <= 0 || obP <= 0 {
		cf.degenerate = true
		return cf
	}
	cf.ia2 = 1 / (ia * ia)
	cf.ib2 = 1 / (ib * ib)
	cf.oa2 = 1 / (oaP * oaP)
	cf.ob2 = 1 / (obP * obP)
	return cf
}

func (cf ellipseField) at(x, y float32) float32 {
	if cf.degenerate {
		return 0
	}
	dx := x - cf.centerX
	dy := y - cf.centerY
	// into the ellipse frame
	xr := dx*cf.cosT + dy*cf.sinT
	yr := -dx*cf.sinT + dy*cf.cosT

	sIn := xr*xr*cf.ia2 + yr*yr*cf.ib2
	sOut := xr*xr*cf.oa2 + yr*yr*cf.ob2
	if sOut >= 1 {
		return 0
	}
	if sIn <= 1 {
		return 1
	}
	// zero border collapses the two boundaries onto each other
	if sIn-sOut < 1e-12 {
		return 0
	}
	ratio := (1 - sOut) * sIn / (sIn - sOut)
	if !(ratio > 0) {
		return 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * ratio
}

func (s ellipseShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	a, err := s.area(f, ctx)
	if err != nil {
		return nil, err
	}
	if a.Empty() {
		return nil, nil
	}
	e, err := ellipseNode(f)
	if err != nil {
		return nil, err
	}
	return fieldMask(ctx, a, newEllipseField(e, ctx).at)
}

func (s ellipseShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	e, err := ellipseNode(f)
	if err != nil {
		return err
	}
	oa, ob := e.outerRadii()
	hull, err := ellipseOutline(ctx, e, oa, ob)
	if err != nil {
		return err
	}
	return fieldMaskROI(ctx, roi, buf, hull[2:], newEllipseField(e, ctx).at)
}
