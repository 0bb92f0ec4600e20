package masks

import "github.com/gopix/masks/internal/outline"

// Transformer maps point batches between the shape's reference space and
// the working space of the pipeline stage being rendered. Implementations
// wrap whatever lens/geometry distortion the surrounding pipeline applies;
// the engine treats them as opaque.
//
// Points are flat [x0,y0, x1,y1, ...] sequences mapped in place. A failed
// batch must return an error and leave no guarantee about the slice
// contents; the engine discards the batch and aborts the render.
type Transformer interface {
	// Transform maps points from shape reference space to working space.
	Transform(pts []float32) error

	// Backtransform maps points from working space back to shape
	// reference space.
	Backtransform(pts []float32) error
}

// RenderContext carries everything a geometry call needs, explicitly and
// immutably. Node coordinates are normalized to [0,1]; the context scales
// them into the working space of Width x Height pixels and routes them
// through the optional Transformer.
type RenderContext struct {
	// Width, Height are the pixel dimensions of the working space.
	Width, Height int

	// Transform is the distortion mapper, nil for identity.
	Transform Transformer

	// PixelDensity is the display pixels-per-unit factor that scales the
	// tessellation tolerance. Zero means 1.
	PixelDensity float32

	// Lookup resolves a form id to its form, for group member rendering.
	// nil when no groups are involved.
	Lookup func(id int32) *Form
}

// ROI is a sub-rectangle of the working space at a processing scale,
// used for tiled pipeline evaluation. X, Y, Width and Height are in
// scaled pixels; Scale relates them to full-resolution working space
// (scaled = full * Scale).
type ROI struct {
	X, Y          int
	Width, Height int
	Scale         float32
}

func (c RenderContext) pixelDensity() float32 {
	if c.PixelDensity <= 0 {
		return 1
	}
	return c.PixelDensity
}

// transform runs the forward mapper over a flat point slice, tolerating a
// nil Transformer.
func (c RenderContext) transform(pts []float32) error {
	if c.Transform == nil || len(pts) == 0 {
		return nil
	}
	if err := c.Transform.Transform(pts); err != nil {
		return errTransform(err)
	}
	return nil
}

// outlineTransform adapts the forward mapper to the tessellator's
// callback type; nil when the context has no mapper so the tessellator
// can skip the batching entirely.
func (c RenderContext) outlineTransform() outline.Transform {
	if c.Transform == nil {
		return nil
	}
	return func(pts []float32) error {
		return c.transform(pts)
	}
}

// backtransform runs the inverse mapper over a flat point slice.
func (c RenderContext) backtransform(pts []float32) error {
	if c.Transform == nil || len(pts) == 0 {
		return nil
	}
	if err := c.Transform.Backtransform(pts); err != nil {
		return errTransform(err)
	}
	return nil
}
