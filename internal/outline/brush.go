package outline

import (
	"github.com/chewxy/math32"

	"github.com/gopix/masks/internal/curve"
)

// BrushPoint is one stroke vertex in working-space pixels, carrying the
// local stroke attributes on top of the path geometry.
type BrushPoint struct {
	curve.PathNode
	Hardness float32
	Density  float32
}

// cyclicCursor maps n in [0, 2*nb) onto 0..nb-1..0, counting both
// endpoints twice. The stroke centerline is walked up and then down
// again so the border travels once around the whole stroke.
func cyclicCursor(n, nb int) int {
	o := n % (2 * nb)
	p := o % nb
	if o <= p {
		return o
	}
	return o - 2*p - 1
}

// brushTess extends the polygon tessellator with the per-sample payload
// channel. Payload pairs (hardness, density) are appended lazily until
// they catch up with the boundary buffer, which keeps all three buffers
// index-aligned no matter how many arc points an accept step inserts.
type brushTess struct {
	tess
	payload     []float32
	withPayload bool
}

func (b *brushTess) syncPayload(h, d float32) {
	if !b.withPayload {
		return
	}
	for len(b.payload) < len(b.pts) {
		b.payload = append(b.payload, h, d)
	}
}

// borderSmallGapArc closes a small border gap with the shortest arc (at
// most half a turn), ignoring the stroke winding. Used for the sharp
// edge case inside an accepted subdivision step.
func (t *tess) borderSmallGapArc(cmax, bmin, bmax []float32) {
	twoPi := 2 * math32.Pi
	a1 := math32.Mod(math32.Atan2(bmin[1]-cmax[1], bmin[0]-cmax[0])+twoPi, twoPi)
	a2 := math32.Mod(math32.Atan2(bmax[1]-cmax[1], bmax[0]-cmax[0])+twoPi, twoPi)
	if a1 == a2 {
		return
	}

	r1 := math32.Hypot(bmin[1]-cmax[1], bmin[0]-cmax[0])
	r2 := math32.Hypot(bmax[1]-cmax[1], bmax[0]-cmax[0])

	delta := a2 - a1
	if math32.Abs(delta) > math32.Pi {
		delta -= math32.Copysign(twoPi, delta)
	}

	l := int(math32.Abs(delta) * math32.Max(r1, r2))
	if l < 2 {
		return
	}

	incra := delta / float32(l)
	incrr := (r2 - r1) / float32(l)
	rr := r1 + incrr
	aa := a1 + incra
	for i := 1; i < l; i++ {
		t.pts = append(t.pts, cmax[0], cmax[1])
		sin, cos := math32.Sincos(aa)
		t.border = append(t.border, cmax[0]+rr*cos, cmax[1]+rr*sin)
		rr += incrr
		aa += incra
	}
}

// borderStamp draws a full circle around the last centerline point,
// terminating a stroke end or marking an abrupt attribute change.
func (t *tess) borderStamp(cmax, bmin []float32) {
	a1 := math32.Atan2(bmin[1]-cmax[1], bmin[0]-cmax[0])
	rad := math32.Hypot(bmin[1]-cmax[1], bmin[0]-cmax[0])

	l := int(2 * math32.Pi * rad)
	if l < 2 {
		return
	}

	incra := 2 * math32.Pi / float32(l)
	aa := a1 + incra
	for i := 0; i < l; i++ {
		t.pts = append(t.pts, cmax[0], cmax[1])
		sin, cos := math32.Sincos(aa)
		t.border = append(t.border, cmax[0]+rad*cos, cmax[1]+rad*sin)
		aa += incra
	}
}

// recurs is the brush variant of the adaptive subdivision: same
// acceptance rule as the polygon one, plus small-gap patching and the
// payload channel. h1/d1 and h2/d2 are the segment endpoint attributes,
// interpolated linearly along the parameter.
func (b *brushTess) recurs(seg curve.Segment, h1, d1, h2, d2 float32, tmin, tmax float64,
	cmin, cmax, bmin, bmax, rc, rb []float32, rp *[2]float32) error {
	if math32.IsNaN(cmin[0]) {
		if err := b.eval(seg, float32(tmin), cmin, bmin); err != nil {
			return err
		}
	}
	if math32.IsNaN(cmax[0]) {
		if err := b.eval(seg, float32(tmax), cmax, bmax); err != nil {
			return err
		}
	}

	if tmax-tmin < 0.0001 ||
		(b.near(cmin, cmax) && (!b.withBorder || b.near(bmin, bmax))) {
		b.pts = append(b.pts, cmax[0], cmax[1])
		rc[0], rc[1] = cmax[0], cmax[1]

		if b.withBorder {
			if math32.IsNaN(bmax[0]) {
				bmax[0], bmax[1] = bmin[0], bmin[1]
			} else if math32.IsNaN(bmin[0]) {
				bmin[0], bmin[1] = bmax[0], bmax[1]
			}

			// a sharp edge can make the border jump; close it with the
			// shortest arc around the centerline point
			if !math32.IsNaN(bmax[0]) {
				dx := int(bmax[0]) - int(bmin[0])
				dy := int(bmax[1]) - int(bmin[1])
				if dx > 2 || dx < -2 || dy > 2 || dy < -2 {
					b.borderSmallGapArc(cmax, bmin, bmax)
				}
			}
			b.border = append(b.border, bmax[0], bmax[1])
			rb[0], rb[1] = bmax[0], bmax[1]
		}

		t := float32(tmax)
		rp[0] = h1 + t*(h2-h1)
		rp[1] = d1 + t*(d2-d1)
		b.syncPayload(rp[0], rp[1])
		return nil
	}

	tx := (tmin + tmax) / 2
	c := [2]float32{nan, nan}
	bb := [2]float32{nan, nan}
	var rc2, rb2 [2]float32
	var rp2 [2]float32
	if err := b.recurs(seg, h1, d1, h2, d2, tmin, tx, cmin, c[:], bmin, bb[:], rc2[:], rb2[:], &rp2); err != nil {
		return err
	}
	return b.recurs(seg, h1, d1, h2, d2, tx, tmax, rc2[:], cmax, rb2[:], bmax, rc, rb, rp)
}

// lastPair returns the last emitted (centerline, border) pair.
func (b *brushTess) lastPair() (c, bd [2]float32) {
	n := len(b.pts)
	c = [2]float32{b.pts[n-2], b.pts[n-1]}
	m := len(b.border)
	bd = [2]float32{b.border[m-2], b.border[m-1]}
	return c, bd
}

// brushSegment assembles the Bezier segment from k to k1 in traversal
// direction dir, picking the handles that face the direction of travel.
func brushSegment(p1, p2 BrushPoint, dir int) curve.Segment {
	if dir > 0 {
		return curve.Segment{
			P1: p1.Corner, C1: p1.Ctrl2,
			C2: p2.Ctrl1, P2: p2.Corner,
			R1: p1.Border[1], R2: p2.Border[0],
		}
	}
	return curve.Segment{
		P1: p1.Corner, C1: p1.Ctrl1,
		C2: p2.Ctrl2, P2: p2.Corner,
		R1: p1.Border[1], R2: p2.Border[0],
	}
}

// Brush tessellates an open stroke into index-aligned centerline, border
// and payload sequences. The centerline is traversed up and then down so
// the border wraps once around the stroke; stamps and arcs terminate the
// ends and patch attribute or size transitions. points must already be
// in working-space pixels with the feather radii prescaled.
func Brush(points []BrushPoint, pixelThreshold int, tr Transform, withBorder, withPayload bool) (*Sequence, *Sequence, error) {
	nb := len(points)
	if nb < 2 {
		return &Sequence{}, nil, nil
	}
	if pixelThreshold < 1 {
		pixelThreshold = 1
	}

	path := make([]curve.PathNode, nb)
	for i := range points {
		path[i] = points[i].PathNode
	}
	curve.InitCtrlPointsOpen(path)
	for i := range points {
		points[i].PathNode = path[i]
	}

	hdr := make([]float32, 0, nb*6)
	for _, p := range points {
		hdr = append(hdr, p.Ctrl1[0], p.Ctrl1[1], p.Corner[0], p.Corner[1], p.Ctrl2[0], p.Ctrl2[1])
	}
	if tr != nil {
		if err := tr(hdr); err != nil {
			return nil, nil, err
		}
	}

	b := &brushTess{
		tess: tess{
			tr:         tr,
			threshold:  pixelThreshold,
			withBorder: withBorder || withPayload,
			pts:        append(make([]float32, 0, nb*6+4096), hdr...),
		},
		withPayload: withPayload,
	}
	if b.withBorder {
		b.border = make([]float32, nb*6, nb*6+4096)
	}
	if withPayload {
		b.payload = make([]float32, nb*6, nb*6+4096)
	}

	cw := 1
	startStamp := false

	for n := 0; n < 2*nb; n++ {
		k := cyclicCursor(n, nb)
		k1 := cyclicCursor(n+1, nb)
		k2 := cyclicCursor(n+2, nb)

		p1 := points[k]
		p2 := points[k1]
		p3 := points[k1]
		p4 := points[k2]

		seg := brushSegment(p1, p2, cw)
		// the start of the following segment, used to spot border gaps
		var seg2 curve.Segment
		if cw > 0 {
			seg2 = curve.Segment{
				P1: p3.Corner, C1: p3.Ctrl2,
				C2: p4.Ctrl1, P2: p4.Corner,
				R1: p3.Border[1], R2: p4.Border[0],
			}
		} else {
			seg2 = curve.Segment{
				P1: p3.Corner, C1: p3.Ctrl1,
				C2: p4.Ctrl2, P2: p4.Corner,
				R1: p3.Border[1], R2: p4.Border[0],
			}
		}

		// abrupt hardness or density transitions get a full stamp so the
		// attribute change shows as a sharp junction
		if math32.Abs(p1.Hardness-p2.Hardness) > 0.05 || math32.Abs(p1.Density-p2.Density) > 0.05 ||
			(startStamp && n == 2*nb-1) {
			if n == 0 {
				startStamp = true // the first node is stamped as the final step
			} else if b.withBorder {
				c, bd := b.lastPair()
				b.borderStamp(c[:], bd[:])
				b.syncPayload(p1.Hardness, p1.Density)
			}
		}

		// stroke size transitions leave a radial step in the border
		if math32.Abs(seg.R1-seg.R2) > 0.0001 && n > 0 && b.withBorder {
			c, bd := b.lastPair()
			bmax := [2]float32{2*c[0] - bd[0], 2*c[1] - bd[1]}
			b.borderGapArc(c[:], bd[:], bmax[:], true)
			b.syncPayload(p1.Hardness, p1.Density)
		}

		// endpoint: close the border with a half turn and reverse
		if k == k1 {
			if b.withBorder && len(b.pts) > nb*6 {
				c, bd := b.lastPair()
				bmax := [2]float32{2*c[0] - bd[0], 2*c[1] - bd[1]}
				b.borderGapArc(c[:], bd[:], bmax[:], true)
				b.syncPayload(p1.Hardness, p1.Density)
			}
			cw = -cw
			continue
		}

		var rc, rb [2]float32
		var rp [2]float32
		cmin := [2]float32{nan, nan}
		cmax := [2]float32{nan, nan}
		bmin := [2]float32{nan, nan}
		bmax := [2]float32{nan, nan}
		if err := b.recurs(seg, p1.Hardness, p1.Density, p2.Hardness, p2.Density,
			0, 1, cmin[:], cmax[:], bmin[:], bmax[:], rc[:], rb[:], &rp); err != nil {
			return nil, nil, err
		}

		b.pts = append(b.pts, rc[0], rc[1])
		b.syncPayload(rp[0], rp[1])

		if b.withBorder {
			if math32.IsNaN(rb[0]) {
				m := len(b.border)
				if math32.IsNaN(b.border[m-2]) && m >= nb*6+4 {
					b.border[m-2] = b.border[m-4]
					b.border[m-1] = b.border[m-3]
				}
				rb[0] = b.border[m-2]
				rb[1] = b.border[m-1]
			}
			b.border = append(b.border, rb[0], rb[1])
		}

		if b.withBorder && nb >= 3 {
			cnext := [2]float32{nan, nan}
			bnext := [2]float32{nan, nan}
			if err := b.eval(seg2, 0, cnext[:], bnext[:]); err != nil {
				return nil, nil, err
			}
			if math32.IsNaN(bnext[0]) {
				if err := b.eval(seg2, 0.0001, cnext[:], bnext[:]); err != nil {
					return nil, nil, err
				}
			}
			if !math32.IsNaN(bnext[0]) &&
				(bnext[0]-rb[0] > 1 || bnext[0]-rb[0] < -1 || bnext[1]-rb[1] > 1 || bnext[1]-rb[1] < -1) {
				b.borderGapArc(rc[:], rb[:], bnext[:], cw > 0)
			}
		}
		b.syncPayload(rp[0], rp[1])
	}

	if b.withBorder {
		fixupNaNBorder(b.border, nb*6)
	}

	pts := toSequence(b.pts, nb*3, nil)
	if withPayload {
		pts.Payload = b.payload
	}
	var border *Sequence
	if b.withBorder {
		inter := findSelfIntersections(b.border, nb)
		border = toSequence(b.border, nb*3, nil)
		applySkips(border, inter)
	}
	return pts, border, nil
}
