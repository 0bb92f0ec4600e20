package masks

import "fmt"

// RenderGroup fills buf with the composite mask of a group form, using
// resolve to look up member forms by id. Convenience wrapper over the
// group's MaskROI with the resolver threaded through the context.
func RenderGroup(resolve func(id int32) *Form, group *Form, ctx RenderContext, roi ROI, buf []float32) error {
	ctx.Lookup = resolve
	return group.MaskROI(ctx, roi, buf)
}

// groupShape composites member masks into one. Each member node carries
// its own opacity and a state bitset choosing the combine mode; members
// render through their own kind's roi path so a group costs one buffer
// per member, not one pipeline.
type groupShape struct{}

func (groupShape) minNodes() int { return 1 }
func (groupShape) nodeSize() int { return 16 }

// members resolves the renderable member forms: Use-gated, known to the
// resolver and not able to reach the group again. A member that closes a
// cycle is skipped rather than failing the whole composite, since stored
// pipelines with such corruption should still degrade gracefully.
func (groupShape) members(f *Form, ctx RenderContext) ([]GroupNode, []*Form, error) {
	if ctx.Lookup == nil {
		return nil, nil, fmt.Errorf("%w: group render without form resolver", ErrMalformedShape)
	}
	nodes := make([]GroupNode, 0, len(f.nodes))
	forms := make([]*Form, 0, len(f.nodes))
	for _, n := range f.nodes {
		gn, ok := n.(GroupNode)
		if !ok {
			return nil, nil, fmt.Errorf("%w: group form with %T node", ErrMalformedShape, n)
		}
		if gn.State&GroupStateUse == 0 {
			continue
		}
		m := ctx.Lookup(gn.FormID)
		if m == nil {
			Logger().Warn("group member unknown", "group", f.id, "member", gn.FormID)
			continue
		}
		if m.id == f.id || reachable(m, f.id, ctx.Lookup, map[int32]bool{}) {
			Logger().Warn("group member closes a cycle", "group", f.id, "member", gn.FormID)
			continue
		}
		nodes = append(nodes, gn)
		forms = append(forms, m)
	}
	return nodes, forms, nil
}

// area is the union of the member areas.
func (s groupShape) area(f *Form, ctx RenderContext) (Area, error) {
	_, forms, err := s.members(f, ctx)
	if err != nil {
		return Area{}, err
	}
	var out Area
	for _, m := range forms {
		a, err := m.Area(ctx)
		if err != nil {
			return Area{}, err
		}
		if a.Empty() {
			continue
		}
		if out.Empty() {
			out = a
			continue
		}
		x1 := min(out.X, a.X)
		y1 := min(out.Y, a.Y)
		x2 := max(out.X+out.Width, a.X+a.Width)
		y2 := max(out.Y+out.Height, a.Y+a.Height)
		out = Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return out, nil
}

func (s groupShape) mask(f *Form, ctx RenderContext) (*Mask, error) {
	a, err := s.area(f, ctx)
	if err != nil {
		return nil, err
	}
	if a.Empty() {
		return nil, nil
	}
	m := NewMask(a.Width, a.Height, a.X, a.Y)
	roi := ROI{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height, Scale: 1}
	if err := s.maskROI(f, ctx, roi, m.Data()); err != nil {
		return nil, err
	}
	return m, nil
}

func (s groupShape) maskROI(f *Form, ctx RenderContext, roi ROI, buf []float32) error {
	width, height := roi.Width, roi.Height
	zero(buf[:width*height])

	nodes, forms, err := s.members(f, ctx)
	if err != nil {
		return err
	}
	if len(forms) == 0 {
		return nil
	}

	tmp := make([]float32, width*height)
	for k, m := range forms {
		if err := m.MaskROI(ctx, roi, tmp); err != nil {
			return err
		}
		compositeMember(buf[:width*height], tmp, nodes[k])
	}
	return nil
}

// compositeMember folds one member field into the group accumulator.
// Inversion applies to the member field before the opacity so an
// inverted member covers the whole buffer, not just its own support.
func compositeMember(dst, src []float32, gn GroupNode) {
	op := gn.Opacity
	if op < 0 {
		op = 0
	} else if op > 1 {
		op = 1
	}
	inv := gn.State&GroupStateInverse != 0

	for i, f := range src {
		if inv {
			f = 1 - f
		}
		f *= op
		a := dst[i]
		switch {
		case gn.State&GroupStateIntersection != 0:
			if f < a {
				dst[i] = f
			}
		case gn.State&GroupStateDifference != 0:
			dst[i] = a * (1 - f)
		case gn.State&GroupStateExclusion != 0:
			dst[i] = a*(1-f) + f*(1-a)
		default:
			// union
			if f > a {
				dst[i] = f
			}
		}
	}
}
