package masks

import (
	"fmt"

	"github.com/gopix/masks/internal/curve"
	"github.com/gopix/masks/internal/outline"
	"github.com/gopix/masks/internal/raster"
)

func init() {
	outline.OnTruncated = func(nbNodes, found int) {
		Logger().Warn("self-intersection list truncated",
			"nodes", nbNodes, "found", found)
	}
}

// polygonShape renders closed bezier paths: adaptive tessellation of the
// boundary and its feather border, exact edge-flag fill of the interior,
// then falloff ramps toward the border with self-intersecting runs
// collapsed.
type polygonShape struct{}

func (polygonShape) minNodes() int { return 3 }
func (polygonShape) nodeSize() int { return 36 }

// polygonPoints scales the path nodes into working-space pixels. Unset
// handle components pass through untouched so the tessellator derives
// them from the neighbors.
func polygonPoints(f *Form, ctx RenderContext) ([]curve.PathNode, error) {
	wd := float32(ctx.Width)
	ht := float32(ctx.Height)
	minDim := float32(min(ctx.Width, ctx.Height))

	scaleHandle := func(v [2]float32) [2]float32 {
		if v[0] != curve.Unset {
			v[0] *= wd
		}
		if v[1] != curve.Unset {
			v[1] *= ht
		}
		return v
	}

	nodes := make([]curve.PathNode, len(f.nodes))
	for i, n := range f.nodes {
		pn, ok := n.(PolygonNode)
		if !ok {
			return nil, fmt.Errorf("%w: polygon form with %T node", ErrMalformedShape, n)
		}
		nodes[i] = curve.PathNode{
			Corner: [2]float32{pn.Corner[0] * wd, pn.Corner[1] * ht},
			Ctrl1:  scaleHandle(pn.Ctrl1),
			Ctrl2:  scaleHandle(pn.Ctrl2),
			Border: [2]float32{pn.Border[0] * minDim, pn.Border[1] * minDim},
			Smooth: pn.State&NodeStateNormal != 0,
		}
	}
	return nodes, nil
}

func (s polygonShape) outlines(f *Form, ctx RenderContext, withBorder bool) (*outline.Sequence, *outline.Sequence, error) {
	nodes, err := polygonPoints(f, ctx)
	if err != nil {
		return nil, nil, err
	}
	threshold := int(2 * ctx.pixelDensity())
	pts, border, err := outline.Polygon(nodes, threshold, ctx.outlineTransform(), withBorder)
	if err != nil {
		return nil, nil, err
	}
	Logger().Debug("polygon tessellated",
		"nodes", len(nodes), "samples", pts.Len(), "border", withBorder)
	return pts, border, nil
}

func (s polygonShape) area(f *Form, ctx RenderContext) (Area, error) {
	pts, border, err := s.outlines(f, ctx, true)
	if err != nil {
		return Area{}, err
	}
	w, h, px, py := raster.BoundingBox(pts, border)
	if w <= 4 || h <= 4 {
		return Area{}, nil
	}
	return Area{X: px, Y: py, Width: w, Height: h}, nil
}

func (s polygonShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	pts, border, err := s.outlines(f, ctx, true)
	if err != nil {
		return nil, err
	}
	w, h, px, py := raster.BoundingBox(pts, border)
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	m := NewMask(w, h, px, py)
	buf := m.Data()
	raster.DrawBoundary(pts, buf, w, px, py)
	raster.FillRows(buf, w, h, renderPool())
	raster.Falloff(pts, border, buf, w, h, px, py)
	return m, nil
}

// maskROI distinguishes four situations: boundary and feather both
// outside the roi (empty mask), boundary outside but feather reaching in
// (ramps only), roi fully inside the boundary (all ones), and the
// general case (crop, edge-flag fill, ramps).
func (s polygonShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	width, height := roi.Width, roi.Height
	zero(buf[:width*height])

	pts, border, err := s.outlines(f, ctx, true)
	if err != nil {
		return err
	}
	if pts.Len()-pts.Start < 3 {
		return nil
	}

	scale := roi.Scale
	if scale <= 0 {
		scale = 1
	}
	raster.ScaleShift(pts, scale, roi.X, roi.Y)
	raster.ScaleShift(border, scale, roi.X, roi.Y)

	boundaryIn := raster.InROI(pts, width, height)
	encircles := false
	if !boundaryIn {
		encircles = raster.Encircles(pts, width, height)
		boundaryIn = encircles
	}
	featherIn := raster.InROI(border, width, height)
	if !boundaryIn && !featherIn {
		return nil
	}

	xmin, xmax, ymin, ymax := raster.Bounds(pts, border)

	if boundaryIn {
		// flat working copy of the boundary; the crop rewrites points in
		// place and the fill may not see the control header
		poly := make([]float32, 0, 2*(pts.Len()-pts.Start))
		for _, sm := range pts.Samples[pts.Start:] {
			poly = append(poly, sm.X, sm.Y)
		}

		// the crop lets the polygon extend one pixel beyond height-1 so
		// the edge-flag fill needs no special casing of the last row
		cropped := raster.CropToROI(poly, 0, float32(width-1), 0, float32(height))
		encircles = encircles || !cropped

		if encircles {
			for i := range buf[:width*height] {
				buf[i] = 1
			}
		} else {
			raster.DrawBoundaryROI(poly, buf, width, height)
			raster.FillRowsROI(buf, width,
				clampi(int(xmin), 0, width-1), clampi(int(xmax), 0, width-1),
				clampi(int(ymin), 0, height-1), clampi(int(ymax), 0, height-1),
				renderPool())
		}
	}

	if !encircles {
		raster.FalloffROI(pts, border, buf, width, height)
	}
	return nil
}
