package masks

import (
	"fmt"

	"github.com/chewxy/math32"
)

// gradientShape renders linear and sigmoidal gradients. The opacity is a
// function of the signed distance to a (possibly curved) iso-line through
// the anchor, so the whole image is covered and the field machinery does
// all the rasterization work.
type gradientShape struct{}

func (gradientShape) minNodes() int { return 1 }
func (gradientShape) nodeSize() int { return 28 }

func gradientNode(f *Form) (GradientNode, error) {
	n, ok := f.nodes[0].(GradientNode)
	if !ok {
		return GradientNode{}, fmt.Errorf("%w: gradient form without gradient node", ErrMalformedShape)
	}
	return n, nil
}

// gradientField precomputes the fade profile as a lookup table over the
// signed pixel distance. Distances are normalized by the image diagonal
// so Compression means the same thing at every resolution; the curvature
// term bends the iso-lines into parabolas in the rotated frame.
type gradientField struct {
	sinv, cosv       float32
	xoffset, yoffset float32
	hwscale          float32 // 1 / image diagonal
	ihwscale         float32
	extent           float32
	curvature        float32
	lut              []float32
	lutmax           int
}

func newGradientField(g GradientNode, ctx RenderContext) gradientField {
	wd := float32(ctx.Width)
	ht := float32(ctx.Height)
	hwscale := 1 / math32.Sqrt(wd*wd+ht*ht)
	sinv, cosv := math32.Sincos(-g.Rotation / 180 * math32.Pi)
	extent := math32.Max(g.Compression, 0.001)

	gf := gradientField{
		sinv:      sinv,
		cosv:      cosv,
		xoffset:   cosv*g.Anchor[0]*wd + sinv*g.Anchor[1]*ht,
		yoffset:   sinv*g.Anchor[0]*wd - cosv*g.Anchor[1]*ht,
		hwscale:   hwscale,
		ihwscale:  1 / hwscale,
		extent:    extent,
		curvature: g.Curvature,
		lutmax:    int(math32.Ceil(4 * extent / hwscale)),
	}

	// the profile saturates at +-4 extents; one lut bin per pixel of
	// distance is plenty for a fade this smooth
	gf.lut = make([]float32, 2*gf.lutmax+2)
	for n := range gf.lut {
		distance := float32(n-gf.lutmax) * hwscale
		var value float32
		if g.State == GradientLinear {
			value = 0.5 + 0.5*distance/extent
		} else {
			value = 0.5 + 0.5*math32.Erf(distance/extent)
		}
		if value < 0 {
			value = 0
		} else if value > 1 {
			value = 1
		}
		gf.lut[n] = value
	}
	return gf
}

func (gf gradientField) at(x, y float32) float32 {
	x0 := (gf.cosv*x + gf.sinv*y - gf.xoffset) * gf.hwscale
	y0 := (gf.sinv*x - gf.cosv*y - gf.yoffset) * gf.hwscale
	distance := y0 - gf.curvature*x0*x0

	if distance <= -4*gf.extent {
		return 0
	}
	if distance >= 4*gf.extent {
		return 1
	}
	i := distance*gf.ihwscale + float32(gf.lutmax)
	bin0 := int(i)
	if bin0 < 0 {
		return gf.lut[0]
	}
	if bin0+1 >= len(gf.lut) {
		return gf.lut[len(gf.lut)-1]
	}
	f := i - float32(bin0)
	return gf.lut[bin0+1]*f + gf.lut[bin0]*(1-f)
}

// area is the whole mapped image: a gradient has no finite support, so
// the bounding box is the transformed image quad.
func (gradientShape) area(f *Form, ctx RenderContext) (Area, error) {
	wd := float32(ctx.Width)
	ht := float32(ctx.Height)
	quad := []float32{0, 0, wd, 0, wd, ht, 0, ht}
	if err := ctx.transform(quad); err != nil {
		return Area{}, err
	}
	xmin, xmax, ymin, ymax, ok := flatBounds(quad)
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

func (s gradientShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	a, err := s.area(f, ctx)
	if err != nil {
		return nil, err
	}
	if a.Empty() {
		return nil, nil
	}
	g, err := gradientNode(f)
	if err != nil {
		return nil, err
	}
	return fieldMaskGrid(ctx, a, 8, newGradientField(g, ctx).at)
}

func (s gradientShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	g, err := gradientNode(f)
	if err != nil {
		return err
	}
	// no hull: the fade reaches every pixel of the roi
	return fieldMaskROI(ctx, roi, buf, nil, newGradientField(g, ctx).at)
}

// gradientPolyline samples the gradient's central iso-line for overlay
// drawing and hit testing: the anchor and its two pivot handles first,
// then the parabola sampled once per pixel of diagonal, dropping samples
// that land far outside the frame so the distortion mapper never sees
// wild coordinates.
func gradientPolyline(ctx RenderContext, g GradientNode, ox, oy float32) ([]float32, error) {
	wd := float32(ctx.Width)
	ht := float32(ctx.Height)
	scale := math32.Sqrt(wd*wd + ht*ht)
	handle := 0.1 * math32.Min(wd, ht)
	x := g.Anchor[0] + ox
	y := g.Anchor[1] + oy

	sinv, cosv := math32.Sincos(-g.Rotation / 180 * math32.Pi)

	count := int(scale) + 3
	pts := make([]float32, 0, count*2)
	pts = append(pts, x*wd, y*ht)
	for _, side := range [2]float32{-90, 90} {
		sin, cos := math32.Sincos(-(g.Rotation + side) / 180 * math32.Pi)
		pts = append(pts, x*wd+handle*cos, y*ht+handle*sin)
	}

	// clip the parabola parameter so the curve ends where it leaves the
	// unit square even under strong curvature
	xstart := float32(-1)
	if c := math32.Abs(g.Curvature); c > 1 {
		xstart = -math32.Sqrt(1 / c)
	}
	xdelta := -2 * xstart / float32(count-3)
	for i := 3; i < count; i++ {
		xi := xstart + float32(i-3)*xdelta
		yi := g.Curvature * xi * xi
		xii := (cosv*xi + sinv*yi) * scale
		yii := (sinv*xi - cosv*yi) * scale
		px := xii + x*wd
		py := yii + y*ht
		if px < -wd || px > 2*wd || py < -ht || py > 2*ht {
			continue
		}
		pts = append(pts, px, py)
	}

	if err := ctx.transform(pts); err != nil {
		return nil, err
	}
	return pts, nil
}

// gradientBorderPolyline returns the two iso-lines one Compression away
// from the center on either side, concatenated with the number of floats
// in the first curve so callers can split them.
func gradientBorderPolyline(ctx RenderContext, g GradientNode) (pts []float32, split int, err error) {
	wd := float32(ctx.Width)
	ht := float32(ctx.Height)
	scale := math32.Sqrt(wd*wd + ht*ht)

	for _, side := range [2]float32{-90, 90} {
		sin, cos := math32.Sincos(-(g.Rotation + side) / 180 * math32.Pi)
		ox := g.Compression * scale * cos / wd
		oy := g.Compression * scale * sin / ht
		line, lerr := gradientPolyline(ctx, g, ox, oy)
		if lerr != nil {
			return nil, 0, lerr
		}
		// skip the anchor and pivot metadata
		if len(line) > 8 {
			pts = append(pts, line[6:]...)
		}
		if side == -90 {
			split = len(pts)
		}
	}
	return pts, split, nil
}
