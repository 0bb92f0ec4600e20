package masks

import (
	"fmt"

	"github.com/gopix/masks/internal/curve"
	"github.com/gopix/masks/internal/outline"
	"github.com/gopix/masks/internal/raster"
)

// brushShape renders freehand strokes. The centerline is tessellated up
// and down with the border wrapping once around it, and the mask is
// drawn entirely from hardness-shaped falloff ramps; there is no
// interior fill because the ramps from both traversal directions cover
// the full stroke width.
type brushShape struct{}

func (brushShape) minNodes() int { return 2 }
func (brushShape) nodeSize() int { return 44 }

// brushPoints scales the stroke nodes into working-space pixels. Unset
// handle components must survive the scaling, they are the tessellator's
// signal to derive the handle from the neighbors.
func brushPoints(f *Form, ctx RenderContext) ([]outline.BrushPoint, error) {
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

	pts := make([]outline.BrushPoint, len(f.nodes))
	for i, n := range f.nodes {
		bn, ok := n.(BrushNode)
		if !ok {
			return nil, fmt.Errorf("%w: brush form with %T node", ErrMalformedShape, n)
		}
		pts[i] = outline.BrushPoint{
			PathNode: curve.PathNode{
				Corner: [2]float32{bn.Corner[0] * wd, bn.Corner[1] * ht},
				Ctrl1:  scaleHandle(bn.Ctrl1),
				Ctrl2:  scaleHandle(bn.Ctrl2),
				Border: [2]float32{bn.Border[0] * minDim, bn.Border[1] * minDim},
				Smooth: bn.State&NodeStateNormal != 0,
			},
			Hardness: bn.Hardness,
			Density:  bn.Density,
		}
	}
	return pts, nil
}

func (s brushShape) outlines(f *Form, ctx RenderContext, withPayload bool) (*outline.Sequence, *outline.Sequence, error) {
	nodes, err := brushPoints(f, ctx)
	if err != nil {
		return nil, nil, err
	}
	threshold := int(2 * ctx.pixelDensity())
	pts, border, err := outline.Brush(nodes, threshold, ctx.outlineTransform(), true, withPayload)
	if err != nil {
		return nil, nil, err
	}
	Logger().Debug("brush tessellated",
		"nodes", len(nodes), "samples", pts.Len(), "payload", withPayload)
	return pts, border, nil
}

func (s brushShape) area(f *Form, ctx RenderContext) (Area, error) {
	pts, border, err := s.outlines(f, ctx, false)
	if err != nil {
		return Area{}, err
	}
	w, h, px, py := raster.BoundingBox(pts, border)
	if w <= 4 || h <= 4 {
		return Area{}, nil
	}
	return Area{X: px, Y: py, Width: w, Height: h}, nil
}

func (s brushShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	pts, border, err := s.outlines(f, ctx, true)
	if err != nil {
		return nil, err
	}
	w, h, px, py := raster.BoundingBox(pts, border)
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	m := NewMask(w, h, px, py)
	raster.FalloffStroke(pts, border, m.Data(), w, h, px, py)
	return m, nil
}

func (s brushShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	width, height := roi.Width, roi.Height
	zero(buf[:width*height])

	pts, border, err := s.outlines(f, ctx, true)
	if err != nil {
		return err
	}

	scale := roi.Scale
	if scale <= 0 {
		scale = 1
	}
	raster.ScaleShift(pts, scale, roi.X, roi.Y)
	raster.ScaleShift(border, scale, roi.X, roi.Y)

	xmin, xmax, ymin, ymax := raster.Bounds(pts, border)
	if xmax < 0 || ymax < 0 || xmin >= float32(width) || ymin >= float32(height) {
		return nil
	}

	raster.FalloffStrokeROI(pts, border, buf, width, height)
	return nil
}
