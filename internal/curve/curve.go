// Package curve implements the cubic Bezier math behind path-based mask
// shapes: point evaluation, normal-offset border points with smoothly
// interpolated radii, and Catmull-Rom derived handles for smooth nodes.
package curve

import "github.com/chewxy/math32"

// PathNode is the per-vertex input of the tessellator, already scaled to
// pixel space. Ctrl1/Ctrl2 components equal to Unset are derived from the
// neighboring nodes when the node is smooth.
type PathNode struct {
	Corner [2]float32
	Ctrl1  [2]float32
	Ctrl2  [2]float32
	Border [2]float32
	Smooth bool
}

// Unset marks a handle component that has never been placed by the user.
const Unset = -1.0

// Segment is one cubic span between two consecutive nodes, with the
// signed feather radius at each end.
type Segment struct {
	P1, C1 [2]float32 // start corner and its outgoing handle
	C2, P2 [2]float32 // incoming handle and end corner
	R1, R2 float32
}

// Eval returns the point of the segment at parameter t.
func (s Segment) Eval(t float32) (x, y float32) {
	ti := 1 - t
	a := ti * ti * ti
	b := 3 * t * ti * ti
	c := 3 * t * t * ti
	d := t * t * t
	x = s.P1[0]*a + s.C1[0]*b + s.C2[0]*c + s.P2[0]*d
	y = s.P1[1]*a + s.C1[1]*b + s.C2[1]*c + s.P2[1]*d
	return x, y
}

// Radius returns the feather radius at parameter t, smoothstep
// interpolated between the segment's end radii so width edits blend
// instead of kinking.
func (s Segment) Radius(t float32) float32 {
	return s.R1 + (s.R2-s.R1)*t*t*(3-2*t)
}

// EvalBorder returns the segment point at t together with the border
// point offset along the local normal by Radius(t). ok is false when the
// derivative vanishes and no normal exists; the caller substitutes a
// neighboring border sample.
func (s Segment) EvalBorder(t float32) (cx, cy, bx, by float32, ok bool) {
	cx, cy = s.Eval(t)

	// derivative in float64, near-degenerate handles cancel badly in
	// single precision
	ti := 1 - float64(t)
	tt := float64(t) * float64(t)
	titi := ti * ti
	tti := float64(t) * ti

	a := 3 * titi
	b := 3 * (titi - 2*tti)
	c := 3 * (2*tti - tt)
	d := 3 * tt

	dx := -float64(s.P1[0])*a + float64(s.C1[0])*b + float64(s.C2[0])*c + float64(s.P2[0])*d
	dy := -float64(s.P1[1])*a + float64(s.C1[1])*b + float64(s.C2[1])*c + float64(s.P2[1])*d

	if dx == 0 && dy == 0 {
		return cx, cy, 0, 0, false
	}
	rad := float64(s.Radius(t))
	l := 1 / math32.Sqrt(float32(dx*dx+dy*dy))
	bx = cx + float32(rad*dy)*l
	by = cy - float32(rad*dx)*l
	return cx, cy, bx, by, true
}

// catmullToBezier returns the Bezier handles that make the span p2..p3
// match a Catmull-Rom spline through p1..p4.
func catmullToBezier(x1, y1, x2, y2, x3, y3, x4, y4 float32) (bx1, by1, bx2, by2 float32) {
	bx1 = (-x1 + 6*x2 + x3) / 6
	by1 = (-y1 + 6*y2 + y3) / 6
	bx2 = (x2 + 6*x3 - x4) / 6
	by2 = (y2 + 6*y3 - y4) / 6
	return bx1, by1, bx2, by2
}

// InitCtrlPoints derives the handles of every smooth node from its
// neighbors, wrapping around the closed path. Cusp nodes keep their
// handles; unset handles of cusp neighbors are filled in too so every
// segment ends up fully determined. Editing a node therefore ripples the
// tangents of adjacent smooth nodes, which is the behavior users expect
// from a spline.
func InitCtrlPoints(nodes []PathNode) {
	nb := len(nodes)
	if nb < 2 {
		return
	}
	for k := range nodes {
		p3 := &nodes[k]
		if !p3.Smooth {
			continue
		}
		p1 := &nodes[(k-2+nb)%nb]
		p2 := &nodes[(k-1+nb)%nb]
		p4 := &nodes[(k+1)%nb]
		p5 := &nodes[(k+2)%nb]

		bx1, by1, bx2, by2 := catmullToBezier(
			p1.Corner[0], p1.Corner[1], p2.Corner[0], p2.Corner[1],
			p3.Corner[0], p3.Corner[1], p4.Corner[0], p4.Corner[1])
		if p2.Ctrl2[0] == Unset {
			p2.Ctrl2[0] = bx1
		}
		if p2.Ctrl2[1] == Unset {
			p2.Ctrl2[1] = by1
		}
		p3.Ctrl1[0] = bx2
		p3.Ctrl1[1] = by2

		bx1, by1, bx2, by2 = catmullToBezier(
			p2.Corner[0], p2.Corner[1], p3.Corner[0], p3.Corner[1],
			p4.Corner[0], p4.Corner[1], p5.Corner[0], p5.Corner[1])
		if p4.Ctrl1[0] == Unset {
			p4.Ctrl1[0] = bx2
		}
		if p4.Ctrl1[1] == Unset {
			p4.Ctrl1[1] = by2
		}
		p3.Ctrl2[0] = bx1
		p3.Ctrl2[1] = by1
	}
}

// InitCtrlPointsOpen derives handles for an open stroke: the path does
// not wrap, so mirrored phantom endpoints stand in for the missing
// neighbors at both ends.
func InitCtrlPointsOpen(nodes []PathNode) {
	nb := len(nodes)
	if nb < 2 {
		return
	}
	mirror := func(a, b [2]float32) [2]float32 {
		return [2]float32{2*a[0] - b[0], 2*a[1] - b[1]}
	}
	corner := func(k int) [2]float32 {
		switch {
		case k < 0:
			return mirror(nodes[0].Corner, nodes[min(-k, nb-1)].Corner)
		case k >= nb:
			return mirror(nodes[nb-1].Corner, nodes[max(2*nb-2-k, 0)].Corner)
		}
		return nodes[k].Corner
	}
	for k := range nodes {
		p3 := &nodes[k]
		if !p3.Smooth {
			continue
		}
		c1 := corner(k - 2)
		c2 := corner(k - 1)
		c4 := corner(k + 1)
		c5 := corner(k + 2)

		bx1, by1, bx2, by2 := catmullToBezier(
			c1[0], c1[1], c2[0], c2[1],
			p3.Corner[0], p3.Corner[1], c4[0], c4[1])
		if k > 0 {
			p2 := &nodes[k-1]
			if p2.Ctrl2[0] == Unset {
				p2.Ctrl2[0] = bx1
			}
			if p2.Ctrl2[1] == Unset {
				p2.Ctrl2[1] = by1
			}
		}
		p3.Ctrl1[0] = bx2
		p3.Ctrl1[1] = by2

		bx1, by1, bx2, by2 = catmullToBezier(
			c2[0], c2[1], p3.Corner[0], p3.Corner[1],
			c4[0], c4[1], c5[0], c5[1])
		if k < nb-1 {
			p4 := &nodes[k+1]
			if p4.Ctrl1[0] == Unset {
				p4.Ctrl1[0] = bx2
			}
			if p4.Ctrl1[1] == Unset {
				p4.Ctrl1[1] = by2
			}
		}
		p3.Ctrl2[0] = bx1
		p3.Ctrl2[1] = by1
	}
}

// IsClockwise reports the winding of the node polygon via the shoelace
// sum. Paths with fewer than 3 nodes report clockwise.
func IsClockwise(nodes []PathNode) bool {
	if len(nodes) < 3 {
		return true
	}
	sum := float32(0)
	for k := range nodes {
		p1 := nodes[k]
		p2 := nodes[(k+1)%len(nodes)]
		sum += (p2.Corner[0] - p1.Corner[0]) * (p2.Corner[1] + p1.Corner[1])
	}
	return sum < 0
}
