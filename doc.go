// Package masks is the mask-geometry engine of a raster photo editor.
//
// It turns compact, user-edited parametric shapes (circles, ellipses,
// polygons, brush strokes, gradients) into soft-edged opacity masks that a
// per-pixel processing pipeline consumes to scope local edits. The engine
// covers the full path from control points to pixels: curve evaluation,
// distortion-adaptive outline tessellation, self-intersection handling on
// feathered borders, and two rasterizers (full bounding-box masks and
// tile/ROI-scoped masks at arbitrary scale).
//
// The display layer, the distortion pipeline and persistent storage are
// external collaborators: the engine consumes a [Transformer] for
// coordinate mapping and flat node blobs for (de)serialization, nothing
// more. A [Form] is the unit of work; every geometry operation takes an
// explicit [RenderContext] instead of reading ambient state, so the engine
// is testable in isolation.
//
// # Quick start
//
//	form := masks.NewForm(masks.KindCircle)
//	form.AppendNode(masks.CircleNode{
//		Center: [2]float32{0.5, 0.5},
//		Radius: 0.1,
//		Border: 0.05,
//	})
//
//	ctx := masks.RenderContext{Width: 100, Height: 100}
//	mask, err := form.Mask(ctx)
//
// Coordinates inside node records are normalized to [0,1] over the full
// image; everything downstream of tessellation is in pixels.
package masks
